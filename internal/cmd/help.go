package cmd

import (
	"context"
	"fmt"
)

var commandHelp = map[string]string{
	"ls":       "ls [path] [-l] [-a]               List directory contents",
	"pwd":      "pwd                               Print working directory",
	"cd":       "cd [path]                         Change directory (cd - for previous, cd for home)",
	"mkdir":    "mkdir [-p] path                   Create directory (-p for parents)",
	"touch":    "touch path                        Create file or update timestamps",
	"cat":      "cat path                          Display file contents",
	"echo":     "echo \"text\" > path                Write to file (> or >> for append)",
	"rm":       "rm [-r] [-f] path                 Move to trash (outside a files root: delete)",
	"stat":     "stat path                         Display metadata, file id and storage",
	"tree":     "tree [path] [-L depth]            Display directory tree",
	"init":     "init                              Initialize volume root and current user",
	"user":     "user add|switch|list [name]       Manage users",
	"mount":    "mount add external|shared path    Declare non-home storage; mount list",
	"trash":    "trash list|restore|purge [name]   Manage the trash bin",
	"versions": "versions list|restore path [n]    Show or roll back file versions",
	"share":    "share [-t type] path recipient    Share a file or folder",
	"unshare":  "unshare id                        Remove a share",
	"shares":   "shares                            List your shares",
	"photos":   "photos [list|rescan]              Show or rebuild your photo index",
	"stats":    "stats                             Show hook and index counters",
	"help":     "help [command]                    Show this help",
	"clear":    "clear                             Clear the terminal",
	"exit":     "exit / quit                       Exit the REPL",
}

var helpSections = []struct {
	title    string
	commands []string
}{
	{"Filesystem commands:", []string{"ls", "pwd", "cd", "mkdir", "touch", "cat", "echo", "rm", "stat", "tree"}},
	{"Users and storage:", []string{"init", "user", "mount", "trash", "versions"}},
	{"Sharing and photos:", []string{"share", "unshare", "shares", "photos", "stats"}},
	{"Other:", []string{"help", "clear", "exit"}},
}

func (r *Router) handleHelp(ctx context.Context, args []string) error {
	w := r.Formatter.Writer
	if len(args) > 0 {
		if help, ok := commandHelp[args[0]]; ok {
			fmt.Fprintln(w, help)
		} else {
			fmt.Fprintf(w, "No help available for '%s'\n", args[0])
		}
		return nil
	}

	fmt.Fprintln(w, "maps-cli: photo-indexed filesystem on Redis")
	for _, section := range helpSections {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, section.title)
		for _, cmd := range section.commands {
			fmt.Fprintf(w, "  %s\n", commandHelp[cmd])
		}
	}
	return nil
}
