package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/genmcp/safe-greeter/pkg/config"
	serverconfig "github.com/genmcp/safe-greeter/pkg/config/server"
)

// Run from this directory: go run .
func main() {
	reflector := serverconfig.NewSchemaReflector()

	commentSources := []struct {
		base string
		path string
	}{
		{base: "github.com/genmcp/safe-greeter/pkg/config/server", path: "../../pkg/config/server"},
		{base: "github.com/genmcp/safe-greeter/pkg/observability/logging", path: "../../pkg/observability/logging"},
	}
	for _, src := range commentSources {
		if err := reflector.AddGoComments(src.base, src.path); err != nil {
			log.Fatalf("Failed to add Go comments: %v", err)
		}
	}

	schemaJSON, err := serverconfig.GenerateSchema(reflector, fmt.Sprintf("safe-greeter server config %s", config.SchemaVersion))
	if err != nil {
		log.Fatalf("Failed to marshal schema: %v", err)
	}

	specsDir := filepath.Join("..", "..", "specs")
	if err := os.MkdirAll(specsDir, 0755); err != nil {
		log.Fatalf("Failed to create specs dir: %v", err)
	}

	versionedFile := filepath.Join(specsDir, fmt.Sprintf("greeter-server-schema-%s.json", config.SchemaVersion))
	latestFile := filepath.Join(specsDir, "greeter-server-schema.json")

	if err := os.WriteFile(versionedFile, schemaJSON, 0644); err != nil {
		log.Fatalf("Failed to write versioned schema: %v", err)
	}
	if err := os.WriteFile(latestFile, schemaJSON, 0644); err != nil {
		log.Fatalf("Failed to write latest schema: %v", err)
	}

	fmt.Printf("Generated server config schema version %s\n", config.SchemaVersion)
}
