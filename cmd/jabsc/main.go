package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"

	"github.com/teranos/jabsc/cmd/jabsc/commands"
	"github.com/teranos/jabsc/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd, err := commands.Execute(ctx)
	stop()

	if err != nil {
		pterm.Error.WithWriter(os.Stderr).Println(err.Error())
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.WithWriter(os.Stderr).Println(hint)
		}
		os.Exit(commands.ExitCode(cmd, err))
	}
}
