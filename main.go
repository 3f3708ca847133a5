// Package main is the entry point for the epget application.
package main

import (
	"github.com/epget-cli/epget/cmd"
	"github.com/epget-cli/epget/config"
	"github.com/epget-cli/epget/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
