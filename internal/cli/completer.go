package cli

import (
	"context"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/gary-kim/maps/internal/cmd"
	"github.com/gary-kim/maps/internal/fs"
)

// NewCompleter creates a tab completer for the REPL.
func NewCompleter(router *cmd.Router, fsClient *fs.Client) *Completer {
	return &Completer{
		router:   router,
		fsClient: fsClient,
	}
}

// Completer provides tab completion for the REPL.
type Completer struct {
	router   *cmd.Router
	fsClient *fs.Client
}

// Do implements readline.AutoCompleter.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	lineStr := string(line[:pos])
	parts := strings.Fields(lineStr)

	// Complete command name
	if len(parts) == 0 || (len(parts) == 1 && !strings.HasSuffix(lineStr, " ")) {
		prefix := ""
		if len(parts) == 1 {
			prefix = parts[0]
		}
		return c.completeCommand(prefix), len(prefix)
	}

	partial := ""
	if !strings.HasSuffix(lineStr, " ") {
		partial = parts[len(parts)-1]
	}

	// Subcommands complete before paths
	if subs, ok := subcommands[strings.ToLower(parts[0])]; ok && (len(parts) == 1 || (len(parts) == 2 && partial != "")) {
		return completeWord(subs, partial), len(partial)
	}

	// Skip flag-like args
	if strings.HasPrefix(partial, "-") {
		return nil, 0
	}

	return c.completePath(partial), len(partial)
}

func (c *Completer) completeCommand(prefix string) [][]rune {
	var candidates []string

	for _, name := range append(c.router.CommandNames(), "exit", "quit") {
		if strings.HasPrefix(name, strings.ToLower(prefix)) {
			candidates = append(candidates, name)
		}
	}
	sort.Strings(candidates)

	result := make([][]rune, len(candidates))
	for i, c := range candidates {
		suffix := c[len(prefix):]
		result[i] = []rune(suffix + " ")
	}
	return result
}

// subcommands lists the first-argument words of commands that take them.
var subcommands = map[string][]string{
	"user":     {"add", "switch", "list"},
	"mount":    {"add", "list"},
	"trash":    {"list", "restore", "purge"},
	"versions": {"list", "restore"},
	"photos":   {"list", "rescan"},
}

func completeWord(words []string, prefix string) [][]rune {
	var result [][]rune
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			result = append(result, []rune(w[len(prefix):]+" "))
		}
	}
	return result
}

func (c *Completer) completePath(partial string) [][]rune {
	ctx := context.Background()

	// Determine the directory to list and the prefix to match
	dir := c.router.State.Cwd
	prefix := partial

	if strings.Contains(partial, "/") {
		lastSlash := strings.LastIndex(partial, "/")
		dirPart := partial[:lastSlash+1]
		prefix = partial[lastSlash+1:]
		dir = fs.ResolvePath(c.router.State.Cwd, dirPart)
	}

	children, err := c.fsClient.ReadDirWithMeta(ctx, dir)
	if err != nil {
		return nil
	}

	var candidates [][]rune
	for _, child := range children {
		if strings.HasPrefix(child.Name, prefix) {
			suffix := child.Name[len(prefix):]
			if child.Meta != nil && child.Meta.Type == fs.TypeDir {
				suffix += "/"
			} else {
				suffix += " "
			}
			candidates = append(candidates, []rune(suffix))
		}
	}
	return candidates
}

// Ensure Completer satisfies the readline.AutoCompleter interface.
var _ readline.AutoCompleter = (*Completer)(nil)
