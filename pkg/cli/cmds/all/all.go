// Package all registers every command group of the shell.
package all

import (
	_ "github.com/robotalks/sparki.go/pkg/cli/cmds/display"
	_ "github.com/robotalks/sparki.go/pkg/cli/cmds/motion"
	_ "github.com/robotalks/sparki.go/pkg/cli/cmds/sense"
	_ "github.com/robotalks/sparki.go/pkg/cli/cmds/storage"
)
