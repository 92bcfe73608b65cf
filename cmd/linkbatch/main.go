package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sundayezeilo/linkbatch/internal/app"
	"github.com/sundayezeilo/linkbatch/internal/errx"
)

func main() {
	os.Exit(exitCode(run()))
}

func run() error {
	// Interrupts stop the run between requests; partial results are saved.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	_, err = application.Run(ctx)
	return err
}

// exitCode maps a run error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	log.Println(err)

	switch errx.KindOf(err) {
	case errx.Config:
		return 2
	case errx.Input:
		return 3
	}
	if errors.Is(err, context.Canceled) {
		return 0
	}
	return 1
}
