package cli

import (
	"fmt"
	"strings"

	"github.com/gary-kim/maps/internal/fs"
)

const maxPromptPathLen = 30

// BuildPrompt generates the dynamic prompt string.
// Format: maps:user:path> where the user's files root shows as ~.
func BuildPrompt(user, cwd string, color bool) string {
	path := truncatePath(homeRelative(user, cwd), maxPromptPathLen)
	if color {
		return fmt.Sprintf("\033[32mmaps:%s:%s>\033[0m ", user, path)
	}
	return fmt.Sprintf("maps:%s:%s> ", user, path)
}

func homeRelative(user, cwd string) string {
	rel, ok := fs.RelativeToHome(user, cwd)
	if !ok {
		return cwd
	}
	if rel == "/" {
		return "~"
	}
	return "~" + rel
}

// truncatePath shortens a path if it exceeds maxLen, keeping the last
// components: /very/long/nested/path becomes /.../nested/path.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}

	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}

	head := "/..."
	if parts[0] == "~" {
		head = "~/..."
	}

	truncated := head + "/" + parts[len(parts)-2] + "/" + parts[len(parts)-1]
	if len(truncated) <= maxLen {
		return truncated
	}
	return head + "/" + parts[len(parts)-1]
}
