package cmd

import (
	"context"
	"errors"
	"fmt"
)

// handleTouch creates empty files or refreshes existing entries. A new file
// emits postCreate and postWrite; an existing one emits postTouch, which
// re-indexes it. Every operand is attempted.
func (r *Router) handleTouch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("touch: missing file operand")
	}

	var errs []error
	for _, arg := range args {
		if err := r.Client.Touch(ctx, r.ResolvePath(arg)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
