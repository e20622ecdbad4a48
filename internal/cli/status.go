package cli

import (
	"time"

	"github.com/semmy-space/codex/internal/auth"
	"github.com/semmy-space/codex/internal/config"
	"github.com/semmy-space/codex/internal/output"
)

// timestampLayout matches ISO-8601 with milliseconds, e.g. 2024-05-01T12:00:00.000Z
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// StatusCmd implements the status command
type StatusCmd struct {
	TrailingArgs
}

// Run executes the status command
func (cmd *StatusCmd) Run(env *Env) error {
	rec, err := env.Store.Load()
	if err != nil {
		return err
	}

	apiKey, err := env.resolveAPIKey(rec)
	if err != nil {
		return err
	}

	report := statusReport{
		ConfigFile: env.Store.Path(),
		KeyStore:   keyStoreName(rec),
		Profile:    rec.Profile,
		UpdatedAt:  rec.UpdatedAt,
	}
	if session, ok := auth.FromRecord(rec, apiKey); ok {
		report.Session = session
		report.APIKey = auth.MaskAPIKey(apiKey)
	}

	return env.Formatter.Print(report)
}

// statusReport is what status prints; the key is always masked
type statusReport struct {
	ConfigFile string       `json:"configFile"`
	APIKey     string       `json:"apiKey,omitempty"`
	KeyStore   string       `json:"keyStore"`
	Profile    string       `json:"profile,omitempty"`
	UpdatedAt  time.Time    `json:"updatedAt,omitzero"`
	Session    auth.Session `json:"session,omitempty"`
}

func (r statusReport) Title() string {
	return "Codex CLI configuration"
}

func (r statusReport) Fields() []output.Field {
	apiKey := "(not set)"
	if r.APIKey != "" {
		apiKey = r.APIKey
		if r.KeyStore == config.KeyringStore {
			apiKey += " (keyring)"
		}
	}

	profile := "(default)"
	if r.Profile != "" {
		profile = r.Profile
	}

	updated := "never"
	if !r.UpdatedAt.IsZero() {
		updated = r.UpdatedAt.UTC().Format(timestampLayout)
	}

	return []output.Field{
		{Label: "Config file", Value: r.ConfigFile},
		{Label: "API key", Value: apiKey},
		{Label: "Profile", Value: profile},
		{Label: "Updated", Value: updated},
	}
}

func keyStoreName(rec config.Record) string {
	if rec.UsesKeyring() {
		return config.KeyringStore
	}
	return "file"
}
