package cmd

import (
	"context"
	"fmt"

	"github.com/gary-kim/maps/internal/fs"
)

func (r *Router) handleCd(ctx context.Context, args []string) error {
	var target string
	switch {
	case len(args) == 0 || args[0] == "~":
		target = fs.UserHome(r.State.User)
	case args[0] == "-":
		if r.State.PrevDir == "" {
			return fmt.Errorf("cd: OLDPWD not set")
		}
		target = r.State.PrevDir
	default:
		target = r.ResolvePath(args[0])
	}

	meta, err := r.Client.Stat(ctx, target)
	if err != nil {
		return err
	}
	if meta == nil {
		return fmt.Errorf("cd: %s: No such file or directory", target)
	}
	if meta.Type != fs.TypeDir {
		return fmt.Errorf("cd: %s: Not a directory", target)
	}

	r.State.PrevDir = r.State.Cwd
	r.State.Cwd = target
	return nil
}

func (r *Router) handlePwd(ctx context.Context, args []string) error {
	r.Formatter.Println(r.State.Cwd)
	return nil
}
