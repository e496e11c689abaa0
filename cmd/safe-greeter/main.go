package main

import "github.com/genmcp/safe-greeter/pkg/cli"

// set with -ldflags "-X main.version=..."
var version string

func main() {
	cli.Execute(version)
}
