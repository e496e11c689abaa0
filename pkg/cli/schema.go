package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genmcp/safe-greeter/pkg/config"
	serverconfig "github.com/genmcp/safe-greeter/pkg/config/server"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVarP(&schemaOutputPath, "output", "o", "", "write the schema to this file instead of stdout")
}

var schemaOutputPath string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the server config file",
	Run:   executeSchemaCmd,
}

func executeSchemaCmd(cobraCmd *cobra.Command, args []string) {
	if err := cobra.NoArgs(cobraCmd, args); err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}

	schemaJSON, err := serverConfigSchema()
	if err != nil {
		fmt.Printf("failed to generate schema: %s\n", err)
		os.Exit(1)
	}

	if schemaOutputPath == "" {
		fmt.Println(string(schemaJSON))
		return
	}

	if err := os.WriteFile(schemaOutputPath, schemaJSON, 0644); err != nil {
		fmt.Printf("failed to write schema: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote server config schema version %s to %s\n", config.SchemaVersion, schemaOutputPath)
}

func serverConfigSchema() ([]byte, error) {
	return serverconfig.GenerateSchema(
		serverconfig.NewSchemaReflector(),
		fmt.Sprintf("safe-greeter server config %s", config.SchemaVersion),
	)
}
