package cmd

import (
	"context"
	"fmt"
)

func (r *Router) handleStat(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("stat: missing operand")
	}

	for _, arg := range args {
		path := r.ResolvePath(arg)
		node, err := r.Client.Get(ctx, path)
		if err != nil {
			return fmt.Errorf("stat: cannot stat '%s': %w", path, err)
		}
		meta, err := r.Client.Stat(ctx, path)
		if err != nil {
			return err
		}
		r.Formatter.PrintStat(node, meta)
	}
	return nil
}
