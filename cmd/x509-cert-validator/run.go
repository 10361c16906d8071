// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/H0llyW00dzZ/x509-cert-validator/src/cli"
	"github.com/H0llyW00dzZ/x509-cert-validator/src/logger"
	verpkg "github.com/H0llyW00dzZ/x509-cert-validator/src/version"
)

var version string // set by ldflags or defaults to imported version

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

// Exit codes.
const (
	exitOK        = 0
	exitError     = 1
	exitNotValid  = 2
	exitInterrupt = 130 // Standard exit code for SIGINT
)

// exitCode maps the CLI result to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, cli.ErrCertificateNotValid):
		return exitNotValid
	default:
		return exitError
	}
}

func main() {
	log := logger.NewCLILogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)

	go func() {
		done <- cli.Execute(ctx, version)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Printf("Error: %v", err)
		}
		os.Exit(exitCode(err))
	case <-ctx.Done():
		log.Println("Operation cancelled by signal. Exiting...")
		// Give in-flight revocation fetches a moment to observe cancellation
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
		os.Exit(exitInterrupt)
	}
}
