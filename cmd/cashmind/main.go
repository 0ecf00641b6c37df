// Package main is the single-binary entrypoint for CashMind.
package main

import "github.com/cashmind/engine/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
