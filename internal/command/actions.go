package command

import (
	"fmt"
	"strings"
)

// ActionHandler handles one ProcGen sub-argument
type ActionHandler func(c *Command, g Generator) string

// actionHandlers maps lowercased sub-arguments to their handlers
var actionHandlers = map[string]ActionHandler{
	"generatemap": generateMap,
}

// GetActionHandler returns the handler for a sub-argument, matched
// case-insensitively, or nil if none exists
func GetActionHandler(arg string) ActionHandler {
	return actionHandlers[strings.ToLower(arg)]
}

// RegisterActionHandler allows registering custom ProcGen actions
func RegisterActionHandler(arg string, handler ActionHandler) {
	actionHandlers[strings.ToLower(arg)] = handler
}

// generateMap runs one generation pass synchronously
func generateMap(c *Command, g Generator) string {
	if g == nil {
		return "No map is loaded."
	}

	res := g.Generate()
	if res == nil {
		return "A map is already being generated."
	}
	if !res.Success {
		return fmt.Sprintf("Map generation failed: %v", res.Err)
	}

	return fmt.Sprintf("Generated floor %d (seed %d): %d rooms, spawn (%d,%d), exit (%d,%d).",
		res.Floor, res.Seed, len(res.Rooms), res.Spawn.X, res.Spawn.Y, res.Exit.X, res.Exit.Y)
}
