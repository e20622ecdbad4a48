package main

import (
	"context"
	"os"

	"github.com/semmy-space/codex/internal/cli"
)

var (
	version = "dev"
)

func main() {
	// Shell completion requests are answered and exit here
	cli.Complete()

	router := cli.NewRouter(version)
	os.Exit(router.Run(context.Background(), os.Args[1:]))
}
