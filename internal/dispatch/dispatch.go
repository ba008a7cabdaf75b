// Package dispatch decides what a command line means before any flag
// parsing happens. The first argument is matched against the built-in
// verbs, then against the registry; anything else falls through to help.
package dispatch

import (
	"slices"

	"github.com/comame/cli-tools/internal/registry"
)

// Kind is the outcome of routing.
type Kind int

const (
	// Help prints the help text and exits 0.
	Help Kind = iota
	// Verb runs a built-in verb handler.
	Verb
	// Command hands the remaining arguments to a registered executable.
	Command
)

func (k Kind) String() string {
	switch k {
	case Verb:
		return "verb"
	case Command:
		return "command"
	default:
		return "help"
	}
}

// Verbs lists every built-in verb. Verbs shadow registered commands of the
// same name.
var Verbs = []string{
	"install", "update", "uninstall",
	"alias", "unalias", "rm",
	"completion", "rm-completion",
	"help",
}

// Decision is the routing result for one invocation.
type Decision struct {
	Kind Kind
	// Name is the verb or command name; empty for Help with no arguments.
	Name string
	// Entry is set for Command.
	Entry registry.Entry
	// Args are the arguments after the first, passed on untouched.
	Args []string
}

// IsVerb reports whether name is a built-in verb. Matching is case-sensitive.
func IsVerb(name string) bool {
	return slices.Contains(Verbs, name)
}

// Route classifies args (without the program name).
func Route(args []string, reg *registry.Registry) Decision {
	if len(args) == 0 {
		return Decision{Kind: Help}
	}
	name, rest := args[0], args[1:]

	if IsVerb(name) {
		return Decision{Kind: Verb, Name: name, Args: rest}
	}
	if entry, ok := reg.Lookup(name); ok {
		return Decision{Kind: Command, Name: name, Entry: entry, Args: rest}
	}
	return Decision{Kind: Help, Name: name, Args: rest}
}
