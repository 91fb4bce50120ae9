package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// ShellCompleter implements readline.AutoCompleter for the shell commands.
type ShellCompleter struct{}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"new": {
		Options: []string{"-dim", "-seed", "-winning-tile"},
	},
	"load": {
		Args: sampleNames(),
	},
	"move": {
		Args: directionNames,
	},
	"play": {
		Args: directionNames,
	},
	"hint": {
		Options: []string{"-remote", "-noprune", "-log"},
	},
	"autoplay": {
		Options: []string{"-games", "-threads", "-depth", "-dim", "-seed", "-maxturns", "-file"},
	},
	"help": {
		Args: []string{"hint", "autoplay", "board"},
	},
}

var commandNames = []string{
	"help", "new", "show", "load", "row", "score", "spawn", "move", "play",
	"hint", "autoplay", "analyze", "exit",
}

var directionNames = []string{"up", "right", "down", "left"}

var boolValues = []string{"true", "false"}

// Do implements the readline.AutoCompleter interface.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// An open quote; fall back to plain splitting.
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}
		if lastCompleteField == "-noprune" {
			completions = boolValues
		}
		if completions == nil {
			if metadata, ok := commandMetadata[cmdName]; ok {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
