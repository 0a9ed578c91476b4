package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/gary-kim/maps/internal/cmd"
	"github.com/gary-kim/maps/internal/config"
	"github.com/gary-kim/maps/internal/fs"
	"github.com/gary-kim/maps/internal/logging"
	"github.com/gary-kim/maps/internal/output"
	"go.uber.org/zap"
)

// REPL is the interactive shell over one user's files. Every line runs as
// the session user, so hooks fired by a command see that user.
type REPL struct {
	Router    *cmd.Router
	Client    *fs.Client
	Config    *config.Config
	Formatter *output.Formatter
}

// NewREPL creates a new REPL instance.
func NewREPL(router *cmd.Router, client *fs.Client, cfg *config.Config, formatter *output.Formatter) *REPL {
	return &REPL{
		Router:    router,
		Client:    client,
		Config:    cfg,
		Formatter: formatter,
	}
}

// Run starts the interactive REPL loop.
func (r *REPL) Run(ctx context.Context) error {
	completer := NewCompleter(r.Router, r.Client)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          BuildPrompt(r.Router.State.User, r.Router.State.Cwd, r.Config.ShouldColor()),
		HistoryFile:     r.Config.HistoryFile,
		HistoryLimit:    10000,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer rl.Close()

	for {
		// cwd and user may have changed
		rl.SetPrompt(BuildPrompt(r.Router.State.User, r.Router.State.Cwd, r.Config.ShouldColor()))

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if lower == "exit" || lower == "quit" {
			return nil
		}

		if execErr := r.Router.Execute(ctx, line); execErr != nil {
			logger := logging.WithContext(logging.WithUser(ctx, r.Router.State.User))
			logger.Debug("command failed",
				zap.String("line", line),
				zap.Error(execErr),
			)
			r.Formatter.Errorf("%s\n", execErr)
			if hint := hintFor(execErr); hint != "" {
				r.Formatter.Errorf("hint: %s\n", hint)
			}
		}
	}
}

// hintFor suggests a next step for errors a session user can act on.
func hintFor(err error) string {
	switch {
	case errors.Is(err, fs.ErrNoUser), errors.Is(err, fs.ErrUnknownUser):
		return "list users with 'user list' or add one with 'user add <uid>'"
	case errors.Is(err, fs.ErrPermission):
		return "only entries under your own files can be changed or shared"
	case errors.Is(err, fs.ErrNotFound):
		return "deleted entries can be recovered with 'trash list' and 'trash restore'"
	}
	return ""
}
