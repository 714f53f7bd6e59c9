// Package serial exposes serial lifecycle administration commands.
package serial

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"serialhub/internal/shared/constants"

	"serialhub/internal/application/serial/usecases"
	"serialhub/internal/interfaces/cli/app"
)

var (
	env          string
	clientNumber string
	maxUsage     int
	expires      string
	demo         bool
	code         string
	signature    string
	deviceID     string
	ipAddress    string
	withAudit    bool
	performedBy  string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serial",
		Short: "Serial lifecycle administration",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.PersistentFlags().StringVar(&performedBy, "by", "cli", "Actor recorded in the audit trail")

	cmd.AddCommand(
		newCreateCommand(),
		newValidateCommand(),
		newRecordCommand(),
		newRevokeCommand(),
		newRenewCommand(),
		newGetCommand(),
		newStatsCommand(),
	)
	return cmd
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new serial for a client",
		RunE: withApp(func(a *app.App, cmd *cobra.Command) error {
			expiresAt, err := parseExpiry(expires)
			if err != nil {
				return err
			}
			result, err := a.Serials.CreateSerial(cmd.Context(), usecases.CreateSerialCommand{
				ClientNumber:  clientNumber,
				MaxUsageCount: maxUsage,
				ExpiresAt:     expiresAt,
				Demo:          demo,
				PerformedBy:   performedBy,
			})
			if err != nil {
				return err
			}
			fmt.Printf("serial:    %s\n", result.Code)
			fmt.Printf("signature: %s\n", result.CodeSignature)
			fmt.Printf("sid:       %s\n", result.Serial.SID())
			return nil
		}),
	}
	cmd.Flags().StringVar(&clientNumber, "client", "", "Client number (required)")
	cmd.Flags().IntVar(&maxUsage, "max-usage", 1, "Maximum concurrent usages")
	cmd.Flags().StringVar(&expires, "expires", "", "Expiration date (RFC3339, empty for perpetual)")
	cmd.Flags().BoolVar(&demo, "demo", false, "Issue a demo serial (single usage, short validity)")
	cmd.MarkFlagRequired("client")
	return cmd
}

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a code offline (no usage recorded)",
		RunE: withApp(func(a *app.App, cmd *cobra.Command) error {
			result, err := a.Serials.ValidateCode(cmd.Context(), usecases.ValidateCodeCommand{
				Code:      code,
				Signature: signature,
			})
			if err != nil {
				return err
			}
			p := result.Payload
			fmt.Printf("valid\n")
			fmt.Printf("  issued_at: %s\n", p.IssuedAt.Format(time.RFC3339))
			fmt.Printf("  client:    %s\n", p.ClientPrefix)
			fmt.Printf("  max_usage: %d\n", p.MaxUsageCount)
			if p.ExpiresAt != nil {
				fmt.Printf("  expires:   %s\n", p.ExpiresAt.Format(time.RFC3339))
			} else {
				fmt.Printf("  expires:   never\n")
			}
			fmt.Printf("  demo:      %t\n", p.IsDemo)
			return nil
		}),
	}
	addCodeFlags(cmd)
	return cmd
}

func newRecordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Validate a code and record one usage",
		RunE: withApp(func(a *app.App, cmd *cobra.Command) error {
			result, err := a.Serials.ValidateAndRecordUsage(cmd.Context(), usecases.ValidateUsageCommand{
				Code:      code,
				Signature: signature,
				DeviceID:  deviceID,
				IPAddress: ipAddress,
			})
			if err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("usage denied: %s", result.Reason)
			}
			fmt.Printf("usage recorded: %s (remaining %d)\n", result.Usage.UUID(), result.Remaining)
			return nil
		}),
	}
	addCodeFlags(cmd)
	cmd.Flags().StringVar(&deviceID, "device", "", "Device identifier (required)")
	cmd.Flags().StringVar(&ipAddress, "ip", "", "Device IP address")
	cmd.MarkFlagRequired("device")
	return cmd
}

func newRevokeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke a serial and its active usages",
		RunE: withApp(func(a *app.App, cmd *cobra.Command) error {
			result, err := a.Serials.RevokeSerial(cmd.Context(), usecases.RevokeSerialCommand{
				SerialNumber: code,
				PerformedBy:  performedBy,
			})
			if err != nil {
				return err
			}
			fmt.Printf("revoked %s (%d usages cascaded)\n", result.Serial.SID(), result.RevokedUsages)
			return nil
		}),
	}
	cmd.Flags().StringVar(&code, "code", "", "Serial code (required)")
	cmd.MarkFlagRequired("code")
	return cmd
}

func newRenewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renew",
		Short: "Renew a serial with a new expiration date",
		RunE: withApp(func(a *app.App, cmd *cobra.Command) error {
			expiresAt, err := parseExpiry(expires)
			if err != nil {
				return err
			}
			result, err := a.Serials.RenewSerial(cmd.Context(), usecases.RenewSerialCommand{
				SerialNumber: code,
				NewExpiresAt: expiresAt,
				PerformedBy:  performedBy,
			})
			if err != nil {
				return err
			}
			fmt.Printf("renewed %s (status %s)\n", result.Serial.SID(), result.Serial.Status())
			return nil
		}),
	}
	cmd.Flags().StringVar(&code, "code", "", "Serial code (required)")
	cmd.Flags().StringVar(&expires, "expires", "", "New expiration date (RFC3339, empty for perpetual)")
	cmd.MarkFlagRequired("code")
	return cmd
}

func newGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a serial with its usage history",
		RunE: withApp(func(a *app.App, cmd *cobra.Command) error {
			result, err := a.Serials.GetSerial(cmd.Context(), usecases.GetSerialCommand{
				SerialNumber:      code,
				IncludeAuditTrail: withAudit,
			})
			if err != nil {
				return err
			}
			s := result.Serial
			fmt.Printf("sid:       %s\n", s.SID())
			fmt.Printf("status:    %s\n", s.Status())
			fmt.Printf("client_id: %d\n", s.ClientID())
			fmt.Printf("max_usage: %d\n", s.MaxUsageCount())
			fmt.Printf("demo:      %t\n", s.IsDemo())
			if s.ExpiresAt() != nil {
				fmt.Printf("expires:   %s\n", s.ExpiresAt().Format(time.RFC3339))
			} else {
				fmt.Printf("expires:   never\n")
			}
			fmt.Printf("usages:    %d\n", len(result.Usages))
			for _, u := range result.Usages {
				fmt.Printf("  %s  %-10s device=%s ip=%s\n", u.CreatedAt().Format(time.RFC3339), u.Status(), u.DeviceID(), u.IPAddress())
			}
			if withAudit {
				fmt.Printf("audit:     %d records\n", len(result.AuditTrail))
				for _, r := range result.AuditTrail {
					fmt.Printf("  %s  %-12s by %s\n", r.PerformedAt().Format(time.RFC3339), r.Action(), r.PerformedBy())
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&code, "code", "", "Serial code (required)")
	cmd.Flags().BoolVar(&withAudit, "audit", false, "Include the audit trail")
	cmd.MarkFlagRequired("code")
	return cmd
}

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage accounting for a serial",
		RunE: withApp(func(a *app.App, cmd *cobra.Command) error {
			result, err := a.Serials.GetUsageStats(cmd.Context(), usecases.GetUsageStatsCommand{
				SerialNumber: code,
			})
			if err != nil {
				return err
			}
			fmt.Printf("sid:       %s\n", result.Serial.SID())
			fmt.Printf("cap:       %d\n", result.UsageCap)
			fmt.Printf("active:    %d\n", result.ActiveUsages)
			fmt.Printf("remaining: %d\n", result.Remaining)
			for status, count := range result.CountsByStatus {
				fmt.Printf("  %-8s %d\n", status, count)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&code, "code", "", "Serial code (required)")
	cmd.MarkFlagRequired("code")
	return cmd
}

func addCodeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&code, "code", "", "Serial code (required)")
	cmd.Flags().StringVar(&signature, "signature", "", "Detached code signature (required)")
	cmd.MarkFlagRequired("code")
	cmd.MarkFlagRequired("signature")
}

func parseExpiry(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid expiration date %q: %w", value, err)
	}
	return &t, nil
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
