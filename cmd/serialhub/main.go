package main

import (
	"os"

	"github.com/spf13/cobra"

	"serialhub/internal/interfaces/cli/client"
	"serialhub/internal/interfaces/cli/keygen"
	"serialhub/internal/interfaces/cli/migrate"
	"serialhub/internal/interfaces/cli/serial"
	"serialhub/internal/interfaces/cli/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "serialhub",
		Short: "SerialHub - serial number lifecycle engine",
		Long:  `SerialHub issues tamper-evident signed serial codes, validates them with concurrency-safe usage accounting, and enforces expiration through scheduled sweeps.`,
	}

	rootCmd.AddCommand(
		worker.NewCommand(),
		migrate.NewCommand(),
		keygen.NewCommand(),
		serial.NewCommand(),
		client.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
