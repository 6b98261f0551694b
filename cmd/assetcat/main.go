package main

import (
	_ "embed"
	"os"
	"strings"

	"assetcat/pkg/cli"
)

//go:embed VERSION
var Version string

func main() {
	if err := cli.NewRootCmd(strings.TrimSpace(Version)).Execute(); err != nil {
		os.Exit(1)
	}
}
