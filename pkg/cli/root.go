package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var cliVersion string

var rootCmd = &cobra.Command{
	Use:   "safe-greeter",
	Short: "safe-greeter serves and calls a whitelisted greet tool over MCP",
}

func Execute(version string) {
	if version == "" {
		cliVersion = getDevVersion().String()
	} else {
		cliVersion = version
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type devVersion struct {
	commit               string
	hasUncommitedChanges bool
}

func (dv devVersion) String() string {
	if dv.hasUncommitedChanges {
		return fmt.Sprintf("development@%s+uncommitedChanges", dv.commit)
	}
	return fmt.Sprintf("development@%s", dv.commit)
}

func getDevVersion() devVersion {
	if info, ok := debug.ReadBuildInfo(); ok {
		return devVersionFromSettings(info.Settings)
	}
	return devVersion{}
}

func devVersionFromSettings(settings []debug.BuildSetting) devVersion {
	dv := devVersion{}
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			if len(setting.Value) >= 7 {
				dv.commit = setting.Value[:7]
			} else {
				dv.commit = setting.Value
			}
		case "vcs.modified":
			dv.hasUncommitedChanges = setting.Value == "true"
		}
	}
	return dv
}
