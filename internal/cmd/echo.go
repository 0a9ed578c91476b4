package cmd

import (
	"context"
	"strings"
)

func (r *Router) handleEcho(ctx context.Context, args []string) error {
	r.Formatter.Println(strings.Join(args, " "))
	return nil
}

// handleEchoRedirect writes (>) or appends (>>) the arguments to a file.
// Writing an existing file keeps its previous content as a version.
func (r *Router) handleEchoRedirect(ctx context.Context, args []string, redirect *Redirect) error {
	content := strings.Join(args, " ") + "\n"
	path := r.ResolvePath(redirect.Path)

	if redirect.Append {
		return r.Client.AppendFile(ctx, path, content)
	}
	return r.Client.WriteFile(ctx, path, content)
}
