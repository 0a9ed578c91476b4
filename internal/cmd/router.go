package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gary-kim/maps/internal/config"
	"github.com/gary-kim/maps/internal/fs"
	"github.com/gary-kim/maps/internal/logging"
	"github.com/gary-kim/maps/internal/output"
	"github.com/gary-kim/maps/internal/photos"
	"github.com/gary-kim/maps/internal/share"
	"go.uber.org/zap"
)

// State holds the current session state.
type State struct {
	Cwd     string
	PrevDir string
	Volume  string
	User    string
}

// Router dispatches commands to the appropriate handler.
type Router struct {
	Client    *fs.Client
	Shares    *share.Manager
	Photos    *photos.Service
	Config    *config.Config
	Formatter *output.Formatter
	State     *State
	handlers  map[string]Handler
}

// Handler is a function that handles a command.
type Handler func(ctx context.Context, args []string) error

// NewRouter creates a command router with all registered handlers. The
// session starts in the acting user's files root.
func NewRouter(client *fs.Client, shares *share.Manager, index *photos.Service, cfg *config.Config, formatter *output.Formatter) *Router {
	r := &Router{
		Client:    client,
		Shares:    shares,
		Photos:    index,
		Config:    cfg,
		Formatter: formatter,
		State: &State{
			Cwd:    fs.UserHome(cfg.User),
			Volume: cfg.Volume,
			User:   cfg.User,
		},
		handlers: make(map[string]Handler),
	}
	r.registerHandlers()
	return r
}

func (r *Router) registerHandlers() {
	r.handlers["ls"] = r.handleLs
	r.handlers["pwd"] = r.handlePwd
	r.handlers["cd"] = r.handleCd
	r.handlers["mkdir"] = r.handleMkdir
	r.handlers["touch"] = r.handleTouch
	r.handlers["cat"] = r.handleCat
	r.handlers["echo"] = r.handleEcho
	r.handlers["rm"] = r.handleRm
	r.handlers["stat"] = r.handleStat
	r.handlers["tree"] = r.handleTree
	r.handlers["init"] = r.handleInit
	r.handlers["user"] = r.handleUser
	r.handlers["mount"] = r.handleMount
	r.handlers["trash"] = r.handleTrash
	r.handlers["versions"] = r.handleVersions
	r.handlers["share"] = r.handleShare
	r.handlers["unshare"] = r.handleUnshare
	r.handlers["shares"] = r.handleShares
	r.handlers["photos"] = r.handlePhotos
	r.handlers["stats"] = r.handleStats
	r.handlers["help"] = r.handleHelp
	r.handlers["clear"] = r.handleClear
}

// Execute runs a parsed command line as the session's acting user.
func (r *Router) Execute(ctx context.Context, line string) error {
	tokens, redirect, err := Tokenize(line)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	ctx = fs.ContextWithUser(ctx, r.State.User)
	ctx = logging.WithUser(ctx, r.State.User)
	logging.WithContext(ctx).Debug("command", zap.String("cmd", cmd), zap.Strings("args", args))

	if cmd == "echo" && redirect != nil {
		return r.handleEchoRedirect(ctx, args, redirect)
	}
	if redirect != nil {
		return fmt.Errorf("redirect not supported for command: %s", cmd)
	}

	handler, ok := r.handlers[cmd]
	if !ok {
		return fmt.Errorf("%s: command not found (try 'help')", cmd)
	}
	return handler(ctx, args)
}

// IsBuiltin returns true if the command is a registered command.
func (r *Router) IsBuiltin(cmd string) bool {
	_, ok := r.handlers[strings.ToLower(cmd)]
	return ok
}

// CommandNames returns all registered command names, sorted.
func (r *Router) CommandNames() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvePath resolves a path relative to cwd.
func (r *Router) ResolvePath(path string) string {
	if path == "" {
		return r.State.Cwd
	}
	return fs.ResolvePath(r.State.Cwd, path)
}

// subcommand splits "user add bob" style arguments.
func subcommand(name string, args []string, allowed ...string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%s: missing subcommand (%s)", name, strings.Join(allowed, "|"))
	}
	sub := strings.ToLower(args[0])
	for _, a := range allowed {
		if sub == a {
			return sub, args[1:], nil
		}
	}
	return "", nil, fmt.Errorf("%s: unknown subcommand '%s' (%s)", name, args[0], strings.Join(allowed, "|"))
}
