package main

import (
	"github.com/robotalks/sparki.go/pkg/cli/sh"
	"github.com/robotalks/sparki.go/pkg/config"

	_ "github.com/robotalks/sparki.go/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	config.SetupFlags()
}

func main() {
	sh.Main()
}
