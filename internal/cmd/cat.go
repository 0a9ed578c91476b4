package cmd

import (
	"context"
	"fmt"
	"strings"
)

// handleCat prints file contents. Reads emit no events.
func (r *Router) handleCat(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("cat: missing file operand")
	}

	var b strings.Builder
	for _, arg := range args {
		content, err := r.Client.ReadFile(ctx, r.ResolvePath(arg))
		if err != nil {
			return err
		}
		b.WriteString(content)
		if content != "" && !strings.HasSuffix(content, "\n") {
			b.WriteByte('\n')
		}
	}
	r.Formatter.Printf("%s", b.String())
	return nil
}
