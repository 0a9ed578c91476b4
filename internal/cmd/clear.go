package cmd

import (
	"context"
	"fmt"
)

const clearScreen = "\033[2J\033[H"

// handleClear clears an interactive terminal. It is a no-op when colour
// output is disabled, which covers pipes and single-command mode.
func (r *Router) handleClear(ctx context.Context, args []string) error {
	if !r.Config.ShouldColor() {
		return nil
	}
	fmt.Fprint(r.Formatter.Writer, clearScreen)
	return nil
}
