package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/workflow-templates/templatelint/pkg/cli"
	"github.com/workflow-templates/templatelint/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var mainLog = logger.New("cmd:main")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := cli.NewRootCommand(version)
	mainLog.Printf("Starting %s %s: args=%v", rootCmd.Name(), version, os.Args[1:])
	err := rootCmd.ExecuteContext(ctx)
	stop()

	cli.PrintValidationError(err)
	os.Exit(cli.ExitCode(err))
}
