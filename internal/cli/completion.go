package cli

import (
	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"
)

// completionLine joins both grammars so the shell sees one command line
type completionLine struct {
	Globals

	Commands commandLine `embed:""`
}

// Complete answers a pending shell completion request and exits the
// process. It returns without doing anything on a normal invocation.
func Complete() {
	var line completionLine
	parser, err := kong.New(&line, kong.Name(appName), kong.NoDefaultHelp())
	if err != nil {
		return
	}

	kongplete.Complete(parser,
		kongplete.WithPredictor("file", complete.PredictFiles("*")),
		kongplete.WithPredictor("dir", complete.PredictDirs("*")),
	)
}
