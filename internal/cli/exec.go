package cli

import (
	"fmt"
	"strings"

	"github.com/semmy-space/codex/internal/launcher"
	"github.com/semmy-space/codex/internal/output"
)

// Variables exported to the child by exec --with-credentials
const (
	apiKeyEnvVar  = "OPENAI_API_KEY"
	profileEnvVar = "CODEX_PROFILE"
)

// ExecCmd implements the exec command. Options are only recognized before
// the command; everything from the first positional on is passed through.
type ExecCmd struct {
	Cwd             string   `help:"Run the command in this directory" placeholder:"PATH" predictor:"dir"`
	Env             []string `help:"Set an environment variable (repeatable)" placeholder:"KEY=VALUE" sep:"none"`
	DryRun          bool     `name:"dry-run" help:"Print the command instead of running it"`
	WithCredentials bool     `name:"with-credentials" help:"Export the stored API key and profile to the command"`

	// partial: flags are checked until the first positional, then everything passes through
	Command []string `arg:"" optional:"" passthrough:"partial" help:"Command to run and its arguments"`
}

// Run executes the exec command
func (cmd *ExecCmd) Run(env *Env) error {
	overlay, err := parseEnvPairs(cmd.Env)
	if err != nil {
		return err
	}

	command := cmd.Command
	// The option terminator may reach us as the first passthrough token
	if len(command) > 0 && command[0] == "--" {
		command = command[1:]
	}
	if len(command) == 0 {
		return output.Validation("exec requires a command to run").
			WithHint("Example: codex exec --cwd ./my-app npm test")
	}

	req := launcher.Request{
		Name:   command[0],
		Args:   command[1:],
		Dir:    cmd.Cwd,
		Env:    overlay,
		DryRun: cmd.DryRun,
	}

	if cmd.WithCredentials {
		creds, err := env.credentialEnv()
		if err != nil {
			return err
		}
		// Explicit --env values win over stored credentials
		for key, value := range overlay {
			creds[key] = value
		}
		req.Env = creds
		req.Redact = []string{apiKeyEnvVar}
	}

	result := env.Launcher.Launch(env.Context, req)

	if sig, ok := result.Signal(); ok {
		fmt.Fprintf(env.Stderr, "Command terminated by signal %s.\n", sig)
		return output.ExitStatus(output.ExitGeneral)
	}

	if code, _ := result.ExitCode(); code != 0 {
		return output.ExitStatus(code)
	}
	return nil
}

// credentialEnv returns the stored credentials as environment variables
func (e *Env) credentialEnv() (map[string]string, error) {
	rec, err := e.Store.Load()
	if err != nil {
		return nil, err
	}

	apiKey, err := e.resolveAPIKey(rec)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, output.Validation("No stored API key to pass to the command.").
			WithHint("Run: codex login --api-key <value>")
	}

	creds := map[string]string{apiKeyEnvVar: apiKey}
	if rec.Profile != "" {
		creds[profileEnvVar] = rec.Profile
	}
	return creds, nil
}

// parseEnvPairs splits KEY=VALUE pairs on the first '='. Later pairs
// overwrite earlier ones with the same key.
func parseEnvPairs(pairs []string) (map[string]string, error) {
	overlay := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, output.Validation("--env expects KEY=VALUE, got %q", pair)
		}
		if key == "" {
			return nil, output.Validation("--env expects a non-empty KEY, got %q", pair)
		}
		overlay[key] = value
	}
	return overlay, nil
}
