// Package cli turns a raw argument list into one codex sub-command and an
// exit code.
//
// Parsing happens in two passes. The global grammar only knows the global
// flags and a passthrough positional, so flag parsing stops at the first
// non-option token: global options are a strict prefix. The sub-command name
// and everything after it are then parsed by the command grammar.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/codex/internal/config"
	"github.com/semmy-space/codex/internal/launcher"
	"github.com/semmy-space/codex/internal/output"
	"github.com/semmy-space/codex/internal/secrets"
)

const appName = "codex"

const usageText = `Usage: codex [global options] <command> [options]

Commands:
  login [--api-key <value>] [--stdin] [--profile <name>] [--keyring]
                          Save credentials locally
  logout                  Remove stored credentials
  status                  Display current configuration
  exec [options] <command> [args...]
                          Run a shell command using Codex tooling
  help                    Show this help message
  install-completions     Install shell completions

Exec options:
  --cwd <path>            Run the command in this directory
  --env KEY=VALUE         Set an environment variable (repeatable)
  --dry-run               Print the command instead of running it
  --with-credentials      Export the stored API key and profile
  --                      End of exec options

Global options:
  -h, --help              Show help
  -V, --version           Show version
  --config <path>         Use a specific config file
  -o, --output <format>   Output format: auto, plain, json, rich
  -v, --verbose           Verbose output

Examples:
  codex login --stdin < token.txt
  codex exec --cwd ./my-app --env NODE_ENV=development npm test
  codex status
`

// globalLine is the first-pass grammar
type globalLine struct {
	Globals

	Rest []string `arg:"" optional:"" passthrough:"partial" name:"command" help:"Command and its arguments"`
}

// commandLine is the second-pass grammar, one kong command per sub-command
type commandLine struct {
	Login              LoginCmd                     `cmd:"" help:"Save credentials locally"`
	Logout             LogoutCmd                    `cmd:"" help:"Remove stored credentials"`
	Status             StatusCmd                    `cmd:"" help:"Display current configuration"`
	Exec               ExecCmd                      `cmd:"" help:"Run a shell command using Codex tooling"`
	HelpCommand        HelpCmd                      `cmd:"" name:"help" help:"Show this help message"`
	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
}

// commandNames lists what the first positional may be
var commandNames = map[string]bool{
	"login":               true,
	"logout":              true,
	"status":              true,
	"exec":                true,
	"help":                true,
	"install-completions": true,
}

// Env is the per-invocation state bound into every command's Run method
type Env struct {
	Context   context.Context
	Store     *config.Store
	Launcher  *launcher.Launcher
	Formatter output.Formatter
	Logger    *slog.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	openSecrets func() (secrets.Store, error)
	secrets     secrets.Store
}

// Secrets opens the secret store on first use
func (e *Env) Secrets() (secrets.Store, error) {
	if e.secrets != nil {
		return e.secrets, nil
	}

	store, err := e.openSecrets()
	if err != nil {
		return nil, &output.CLIError{
			ExitCode: output.ExitGeneral,
			Kind:     output.KindIO,
			Message:  fmt.Sprintf("Failed to initialize secrets store: %v", err),
		}
	}
	e.secrets = store
	return store, nil
}

// Router parses arguments and runs the selected sub-command
type Router struct {
	Version string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// OpenSecrets opens the store used by login --keyring. Nil picks the
	// backend from the environment.
	OpenSecrets func() (secrets.Store, error)
}

// NewRouter creates a router wired to the process streams
func NewRouter(version string) *Router {
	return &Router{
		Version: version,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run executes one invocation and returns the process exit code.
// It never panics on bad input; every failure is reported on Stderr.
func (r *Router) Run(ctx context.Context, args []string) int {
	var line globalLine
	parser, err := kong.New(&line,
		kong.Name(appName),
		kong.Description("Local credential manager and command launcher"),
		kong.NoDefaultHelp(),
		kong.Writers(r.Stdout, r.Stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return output.ExitGeneral
	}

	if _, err := parser.Parse(args); err != nil {
		fmt.Fprintf(r.Stderr, "%v\n\n%s", err, usageText)
		return output.ExitGeneral
	}

	globals := line.Globals
	if globals.Version {
		fmt.Fprintf(r.Stdout, "%s %s\n", appName, r.Version)
		return output.ExitOK
	}

	if globals.Help || len(line.Rest) == 0 {
		fmt.Fprint(r.Stdout, usageText)
		return output.ExitOK
	}

	name := line.Rest[0]
	if !commandNames[name] {
		fmt.Fprintf(r.Stderr, "Unknown command: %s\n\n%s", name, usageText)
		return output.ExitGeneral
	}

	formatter := output.New(globals.ResolvedOutput(r.Stdout), r.Stdout, r.Stderr)
	env, err := r.newEnv(ctx, &globals, formatter)
	if err != nil {
		return output.ExitWithError(formatter, err)
	}

	if err := r.dispatch(env, line.Rest); err != nil {
		return output.ExitWithError(formatter, err)
	}
	return output.ExitOK
}

func (r *Router) newEnv(ctx context.Context, globals *Globals, formatter output.Formatter) (*Env, error) {
	logger := newLogger(r.Stderr, globals.Verbose)

	store, err := config.NewStore(globals.Config)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved config path", "path", store.Path())

	openSecrets := r.OpenSecrets
	if openSecrets == nil {
		openSecrets = func() (secrets.Store, error) {
			return secrets.Open(secrets.OptionsFromEnv(logger))
		}
	}

	return &Env{
		Context:     ctx,
		Store:       store,
		Launcher:    launcher.New(r.Stdin, r.Stdout, r.Stderr, logger),
		Formatter:   formatter,
		Logger:      logger,
		Stdin:       r.Stdin,
		Stdout:      r.Stdout,
		Stderr:      r.Stderr,
		openSecrets: openSecrets,
	}, nil
}

// dispatch parses the sub-command's own options and runs it
func (r *Router) dispatch(env *Env, args []string) error {
	var cmds commandLine
	parser, err := kong.New(&cmds,
		kong.Name(appName),
		kong.NoDefaultHelp(),
		kong.Writers(r.Stdout, r.Stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return output.Validation("%s: %v", args[0], err)
	}

	return kctx.Run(env)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// TrailingArgs absorbs whatever follows a command that takes no arguments
type TrailingArgs struct {
	Ignored []string `arg:"" optional:"" passthrough:"all" help:"Ignored"`
}

// HelpCmd prints the usage text
type HelpCmd struct {
	TrailingArgs
}

func (cmd *HelpCmd) Run(env *Env) error {
	fmt.Fprint(env.Stdout, usageText)
	return nil
}
