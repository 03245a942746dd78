package cmd

import (
	"context"
	"time"

	"github.com/emrgen/custody/internal/metrics"
	"github.com/emrgen/custody/internal/service"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "document access commands",
}

func init() {
	accessCmd.AddCommand(grantAccessCmd())
	accessCmd.AddCommand(revokeAccessCmd())
	accessCmd.AddCommand(checkAccessCmd())
}

func grantAccessCmd() *cobra.Command {
	var (
		docID   string
		grantee string
		level   string
		ttl     time.Duration
	)

	command := &cobra.Command{
		Use:   "grant",
		Short: "grant a principal access to a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			var expiresAt *time.Time
			if ttl > 0 {
				expiry := time.Now().UTC().Add(ttl)
				expiresAt = &expiry
			}

			grant, err := svc.access.GrantAccess(context.Background(), &service.GrantAccessRequest{
				Caller:      resolveCaller(cmd),
				DocumentID:  docID,
				Grantee:     grantee,
				AccessLevel: level,
				ExpiresAt:   expiresAt,
			})
			if err != nil {
				return err
			}

			color.Green("granted %s access on %s to %s", grant.AccessLevel, grant.DocumentID, grant.Grantee)
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	command.Flags().StringVarP(&grantee, "grantee", "g", "", "principal to grant")
	command.Flags().StringVar(&level, "level", "read", "read, write or admin")
	command.Flags().DurationVar(&ttl, "ttl", 0, "grant lifetime, 0 for no expiry")
	_ = command.MarkFlagRequired("document")
	_ = command.MarkFlagRequired("grantee")

	return command
}

func revokeAccessCmd() *cobra.Command {
	var (
		docID   string
		grantee string
	)

	command := &cobra.Command{
		Use:   "revoke",
		Short: "revoke a principal's access to a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			err := svc.access.RevokeAccess(context.Background(), &service.RevokeAccessRequest{
				Caller:     resolveCaller(cmd),
				DocumentID: docID,
				Grantee:    grantee,
			})
			if err != nil {
				return err
			}

			color.Green("revoked access on %s from %s", docID, grantee)
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	command.Flags().StringVarP(&grantee, "grantee", "g", "", "principal to revoke")
	_ = command.MarkFlagRequired("document")
	_ = command.MarkFlagRequired("grantee")

	return command
}

func checkAccessCmd() *cobra.Command {
	var (
		docID     string
		principal string
	)

	command := &cobra.Command{
		Use:   "check",
		Short: "check whether a principal can access a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			ok, err := svc.access.CheckAccess(context.Background(), docID, principal)
			if err != nil {
				return err
			}

			if ok {
				color.Green("%s has access to %s", principal, docID)
			} else {
				color.Red("%s has no access to %s", principal, docID)
			}
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	command.Flags().StringVarP(&principal, "principal", "p", "", "principal to check")
	_ = command.MarkFlagRequired("document")
	_ = command.MarkFlagRequired("principal")

	return command
}
