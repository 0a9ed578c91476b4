package cmd

import "context"

// handleInit initializes the volume root and the acting user's home.
func (r *Router) handleInit(ctx context.Context, args []string) error {
	if err := r.Client.Init(ctx); err != nil {
		return err
	}
	if err := r.EnsureUser(ctx, r.State.User); err != nil {
		return err
	}
	r.Formatter.Printf("Volume '%s' initialized\n", r.State.Volume)
	return nil
}

// EnsureUser creates uid with an empty files root unless it exists.
func (r *Router) EnsureUser(ctx context.Context, uid string) error {
	ok, err := r.Client.UserExists(ctx, uid)
	if err != nil || ok {
		return err
	}
	return r.Client.CreateUser(ctx, uid)
}
