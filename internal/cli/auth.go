package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/semmy-space/codex/internal/config"
	"github.com/semmy-space/codex/internal/output"
	"github.com/semmy-space/codex/internal/secrets"
)

// LoginCmd implements the login command
type LoginCmd struct {
	APIKey  string `name:"api-key" help:"API key to store" placeholder:"VALUE"`
	Stdin   bool   `help:"Read the API key from standard input"`
	Profile string `help:"Profile name to record" placeholder:"NAME"`
	Keyring bool   `help:"Keep the API key in the OS keyring instead of the config file"`
}

// Run executes the login command
func (cmd *LoginCmd) Run(env *Env) error {
	apiKey := cmd.APIKey

	// An explicit --api-key wins; stdin is only read without one
	if apiKey == "" && cmd.Stdin {
		data, err := io.ReadAll(env.Stdin)
		if err != nil {
			return &output.CLIError{
				ExitCode: output.ExitGeneral,
				Kind:     output.KindIO,
				Message:  fmt.Sprintf("Failed to read standard input: %v", err),
			}
		}
		apiKey = strings.TrimSpace(string(data))
	}

	if apiKey == "" {
		return output.Validation("Login requires either --api-key or --stdin to provide credentials.").
			WithHint("Run: codex login --stdin < token.txt")
	}

	var keyStore secrets.Store
	if cmd.Keyring {
		var err error
		keyStore, err = env.Secrets()
		if err != nil {
			return err
		}
		if err := keyStore.Set(secrets.APIKeyName, apiKey); err != nil {
			return &output.CLIError{
				ExitCode: output.ExitGeneral,
				Kind:     output.KindIO,
				Message:  fmt.Sprintf("Failed to store API key: %v", err),
			}
		}
	}

	var leftKeyring bool
	_, err := env.Store.Update(func(rec *config.Record) error {
		leftKeyring = rec.UsesKeyring() && !cmd.Keyring

		if cmd.Keyring {
			rec.APIKey = ""
			rec.APIKeyStore = config.KeyringStore
		} else {
			rec.APIKey = apiKey
			rec.APIKeyStore = ""
		}

		if cmd.Profile != "" {
			rec.Profile = cmd.Profile
		}
		return nil
	})
	if err != nil {
		return err
	}

	if leftKeyring {
		env.forgetStoredKey()
	}

	env.Logger.Debug("saved credentials", "path", env.Store.Path(), "keyring", cmd.Keyring)
	fmt.Fprintf(env.Stdout, "Saved credentials to %s\n", env.Store.Path())
	if keyStore != nil {
		fmt.Fprintf(env.Stdout, "API key kept in %s\n", keyStore.Backend())
	}
	return nil
}

// LogoutCmd implements the logout command
type LogoutCmd struct {
	TrailingArgs
}

// Run executes the logout command
func (cmd *LogoutCmd) Run(env *Env) error {
	// The record is only read to find a keyring entry; an unreadable file is still removed
	rec, err := env.Store.Load()
	if err != nil {
		env.Logger.Debug("could not read config before logout", "error", err)
	} else if rec.UsesKeyring() {
		env.forgetStoredKey()
	}

	if err := env.Store.Delete(); err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, "Removed stored credentials.")
	return nil
}

// resolveAPIKey returns the API key for rec, reading the secret store when
// the record points there. A missing entry is an empty key.
func (e *Env) resolveAPIKey(rec config.Record) (string, error) {
	if !rec.UsesKeyring() {
		return rec.APIKey, nil
	}

	store, err := e.Secrets()
	if err != nil {
		return "", err
	}

	key, err := store.Get(secrets.APIKeyName)
	if errors.Is(err, secrets.ErrNotFound) {
		e.Logger.Warn("config refers to a keyring entry that does not exist", "backend", store.Backend())
		return "", nil
	}
	if err != nil {
		return "", &output.CLIError{
			ExitCode: output.ExitGeneral,
			Kind:     output.KindIO,
			Message:  fmt.Sprintf("Failed to read API key from %s: %v", store.Backend(), err),
		}
	}
	return key, nil
}

// forgetStoredKey removes the keyring copy of the API key, best effort
func (e *Env) forgetStoredKey() {
	store, err := e.Secrets()
	if err == nil {
		err = store.Delete(secrets.APIKeyName)
	}
	if err != nil && !errors.Is(err, secrets.ErrNotFound) {
		e.Logger.Warn("failed to remove API key from secret store", "error", err)
	}
}
