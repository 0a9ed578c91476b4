package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gary-kim/maps/internal/share"
	flag "github.com/spf13/pflag"
)

func (r *Router) handleShare(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("share", flag.ContinueOnError)
	typeName := flags.StringP("type", "t", "user", "Share type (user, group, link, email, remote)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	t, err := share.ParseType(*typeName)
	if err != nil {
		return fmt.Errorf("share: %w", err)
	}

	var with string
	switch {
	case flags.NArg() == 2:
		with = flags.Arg(1)
	case flags.NArg() == 1 && t == share.TypeLink:
	default:
		return fmt.Errorf("share: usage: share [-t type] path recipient")
	}

	s, err := r.Shares.Share(ctx, r.ResolvePath(flags.Arg(0)), t, with)
	if err != nil {
		return err
	}
	if r.Formatter.JSON {
		r.Formatter.PrintShares([]*share.Share{s})
		return nil
	}
	r.Formatter.Printf("share %d created\n", s.ID)
	return nil
}

func (r *Router) handleUnshare(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("unshare: missing share id")
	}
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("unshare: invalid share id '%s'", arg)
		}
		if err := r.Shares.Unshare(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) handleShares(ctx context.Context, args []string) error {
	shares, err := r.Shares.List(ctx)
	if err != nil {
		return err
	}
	r.Formatter.PrintShares(shares)
	return nil
}
