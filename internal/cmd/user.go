package cmd

import (
	"context"
	"fmt"

	"github.com/gary-kim/maps/internal/fs"
)

func (r *Router) handleUser(ctx context.Context, args []string) error {
	sub, rest, err := subcommand("user", args, "add", "switch", "list")
	if err != nil {
		return err
	}

	switch sub {
	case "add":
		if len(rest) == 0 {
			return fmt.Errorf("user add: missing user name")
		}
		for _, uid := range rest {
			if err := r.Client.CreateUser(ctx, uid); err != nil {
				return err
			}
		}
		return nil

	case "switch":
		if len(rest) != 1 {
			return fmt.Errorf("user switch: expected one user name")
		}
		ok, err := r.Client.UserExists(ctx, rest[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user switch: '%s': %w", rest[0], fs.ErrUnknownUser)
		}
		r.State.User = rest[0]
		r.State.PrevDir = ""
		r.State.Cwd = fs.UserHome(rest[0])
		return nil

	default:
		users, err := r.Client.Users(ctx)
		if err != nil {
			return err
		}
		r.Formatter.PrintUsers(users, r.State.User)
		return nil
	}
}
