// Package command parses host command lines and dispatches the ProcGen
// command to a generator.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lawnchairsociety/procgen/internal/dungeon"
	"github.com/lawnchairsociety/procgen/internal/logger"
)

// Generator runs a generation pass. It returns nil when a pass is already
// running. Satisfied by *host.Adapter.
type Generator interface {
	Generate() *dungeon.Result
}

type Command struct {
	Name string
	Args []string
}

// RequireArgs checks if the command has at least the minimum number of arguments
// Returns an error with the usage message if not enough arguments are provided
func (c *Command) RequireArgs(min int, usage string) error {
	if len(c.Args) < min {
		return errors.New(usage)
	}
	return nil
}

// ParseCommand splits a command line into a lowercased name and its arguments
func ParseCommand(input string) *Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Name: "", Args: []string{}}
	}

	return &Command{
		Name: strings.ToLower(parts[0]),
		Args: parts[1:],
	}
}

// Execute runs the command against g and returns the reply for the issuer.
// An empty reply means the command was ignored.
func (c *Command) Execute(g Generator) string {
	switch c.Name {
	case "":
		return ""
	case "procgen":
		return c.executeProcGen(g)
	default:
		return fmt.Sprintf("Unknown command: %s", c.Name)
	}
}

// executeProcGen runs the first recognized action among the arguments.
// Unrecognized arguments are ignored.
func (c *Command) executeProcGen(g Generator) string {
	if err := c.RequireArgs(1, "Usage: ProcGen GenerateMap"); err != nil {
		return err.Error()
	}

	for _, arg := range c.Args {
		if handler := GetActionHandler(arg); handler != nil {
			return handler(c, g)
		}
		logger.Debug("Ignoring ProcGen argument", "arg", arg)
	}
	return ""
}
