package cli

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Globals holds the options recognized before the sub-command name
type Globals struct {
	Help    bool   `help:"Show help" short:"h"`
	Version bool   `help:"Show version" short:"V"`
	Config  string `help:"Use a specific config file" placeholder:"PATH" env:"CODEX_CONFIG" predictor:"file"`
	Output  string `help:"Output format" default:"auto" enum:"json,plain,rich,auto" short:"o" env:"CODEX_OUTPUT"`
	Verbose bool   `help:"Verbose output" short:"v" env:"CODEX_VERBOSE"`
}

// ResolvedOutput returns the effective output mode
// "auto" detects TTY: if stdout is TTY -> rich, else -> plain
func (g *Globals) ResolvedOutput(stdout io.Writer) string {
	if g.Output != "auto" && g.Output != "" {
		return g.Output
	}

	// Detect if stdout is a TTY
	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "rich"
	}

	return "plain"
}
