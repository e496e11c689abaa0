// Package config holds values shared by the safe-greeter config file formats.
package config

// SchemaVersion is the version of the config file format this build reads.
const SchemaVersion = "0.1.0"
