// Package client exposes client administration commands.
package client

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"serialhub/internal/shared/constants"

	"serialhub/internal/application/client/usecases"
	"serialhub/internal/interfaces/cli/app"
)

var (
	env          string
	name         string
	clientNumber string
	performedBy  string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Client administration",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.PersistentFlags().StringVar(&performedBy, "by", "cli", "Actor recorded in the audit trail")

	cmd.AddCommand(
		newCreateCommand(),
		newDeactivateCommand(),
		newGetCommand(),
	)
	return cmd
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new client",
		RunE: withApp(func(a *app.App, cmd *cobra.Command) error {
			result, err := a.Clients.CreateClient(cmd.Context(), usecases.CreateClientCommand{
				Name:         name,
				ClientNumber: clientNumber,
			})
			if err != nil {
				return err
			}
			c := result.Client
			fmt.Printf("sid:    %s\n", c.SID())
			fmt.Printf("number: %s\n", c.ClientNumber())
			fmt.Printf("prefix: %s\n", c.CodePrefix())
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "Client name (required)")
	cmd.Flags().StringVar(&clientNumber, "number", "", "Client number (required)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("number")
	return cmd
}

func newDeactivateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Deactivate a client and soft-delete its serials",
		RunE: withApp(func(a *app.App, cmd *cobra.Command) error {
			result, err := a.Clients.DeactivateClient(cmd.Context(), usecases.DeactivateClientCommand{
				ClientNumber: clientNumber,
				PerformedBy:  performedBy,
			})
			if err != nil {
				return err
			}
			fmt.Printf("deactivated %s (%d serials removed)\n", result.Client.SID(), result.RemovedSerials)
			return nil
		}),
	}
	cmd.Flags().StringVar(&clientNumber, "number", "", "Client number (required)")
	cmd.MarkFlagRequired("number")
	return cmd
}

func newGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a client",
		RunE: withApp(func(a *app.App, cmd *cobra.Command) error {
			result, err := a.Clients.GetClient(cmd.Context(), usecases.GetClientCommand{
				ClientNumber: clientNumber,
			})
			if err != nil {
				return err
			}
			c := result.Client
			fmt.Printf("sid:     %s\n", c.SID())
			fmt.Printf("name:    %s\n", c.Name())
			fmt.Printf("number:  %s\n", c.ClientNumber())
			fmt.Printf("active:  %t\n", c.IsActive())
			fmt.Printf("created: %s\n", c.CreatedAt().Format(time.RFC3339))
			return nil
		}),
	}
	cmd.Flags().StringVar(&clientNumber, "number", "", "Client number (required)")
	cmd.MarkFlagRequired("number")
	return cmd
}

func withApp(fn func(a *app.App, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		application, err := app.New(env)
		if err != nil {
			return err
		}
		defer application.Close()
		return fn(application, cmd)
	}
}
