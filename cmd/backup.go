package cmd

import (
	"context"

	"github.com/emrgen/custody/internal/metrics"
	"github.com/emrgen/custody/internal/service"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "backup ledger commands",
}

func init() {
	backupCmd.AddCommand(backupPolicyCmd())
	backupCmd.AddCommand(recordBackupCmd())
	backupCmd.AddCommand(verifyBackupCmd())
	backupCmd.AddCommand(listBackupsCmd())
	backupCmd.AddCommand(complianceCmd())
}

func backupPolicyCmd() *cobra.Command {
	var (
		docID         string
		minCount      int
		backupFreq    int
		verifyFreq    int
		encryptionReq bool
	)

	command := &cobra.Command{
		Use:   "policy",
		Short: "set a document's backup policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			policy, err := svc.backup.CreateBackupPolicy(context.Background(), &service.CreateBackupPolicyRequest{
				Caller:                     resolveCaller(cmd),
				DocumentID:                 docID,
				MinBackupCount:             minCount,
				BackupFrequencyHours:       backupFreq,
				VerificationFrequencyHours: verifyFreq,
				EncryptionRequired:         encryptionReq,
			})
			if err != nil {
				return err
			}

			color.Green("document %s requires %d backups", policy.DocumentID, policy.MinBackupCount)
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	command.Flags().IntVarP(&minCount, "min", "m", 1, "minimum backup count")
	command.Flags().IntVar(&backupFreq, "backup-freq", 0, "backup frequency in hours")
	command.Flags().IntVar(&verifyFreq, "verify-freq", 0, "verification frequency in hours")
	command.Flags().BoolVar(&encryptionReq, "encrypted", false, "require encrypted backups")
	_ = command.MarkFlagRequired("document")

	return command
}

func recordBackupCmd() *cobra.Command {
	var (
		docID      string
		locationID string
		hash       string
		encryption string
	)

	command := &cobra.Command{
		Use:   "record",
		Short: "record a backup of a document at a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			backupHash, err := decodeHash(hash)
			if err != nil {
				return err
			}

			backup, err := svc.backup.RecordBackup(context.Background(), &service.RecordBackupRequest{
				Caller:         resolveCaller(cmd),
				DocumentID:     docID,
				LocationID:     locationID,
				BackupHash:     backupHash,
				EncryptionType: encryption,
			})
			if err != nil {
				return err
			}

			color.Green("backup of %s recorded at %s, status %s", backup.DocumentID, backup.LocationID, backup.Status)
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	command.Flags().StringVarP(&locationID, "location", "l", "", "location id")
	command.Flags().StringVarP(&hash, "hash", "s", "", "hex encoded 32 byte backup hash")
	command.Flags().StringVar(&encryption, "encryption", "", "encryption label, e.g. aes-256")
	_ = command.MarkFlagRequired("document")
	_ = command.MarkFlagRequired("location")
	_ = command.MarkFlagRequired("hash")

	return command
}

func verifyBackupCmd() *cobra.Command {
	var (
		docID      string
		locationID string
		ok         bool
		notes      string
	)

	command := &cobra.Command{
		Use:   "verify",
		Short: "attest to a backup's integrity",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			verification, err := svc.backup.VerifyBackup(context.Background(), &service.VerifyBackupRequest{
				Caller:     resolveCaller(cmd),
				DocumentID: docID,
				LocationID: locationID,
				Success:    ok,
				Notes:      notes,
			})
			if err != nil {
				return err
			}

			color.Green("verification of %s at %s recorded: %s", verification.DocumentID, verification.LocationID, verification.VerificationResult)
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	command.Flags().StringVarP(&locationID, "location", "l", "", "location id")
	command.Flags().BoolVar(&ok, "ok", false, "verification succeeded")
	command.Flags().StringVar(&notes, "notes", "", "verification notes")
	_ = command.MarkFlagRequired("document")
	_ = command.MarkFlagRequired("location")

	return command
}

func listBackupsCmd() *cobra.Command {
	var docID string

	command := &cobra.Command{
		Use:   "list",
		Short: "list a document's backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			backups, err := svc.backup.ListDocumentBackups(context.Background(), docID)
			if err != nil {
				return err
			}

			for _, backup := range backups {
				color.Cyan("%s %s %s %s", backup.LocationID, backup.Status, backup.BackupTime.Format("2006-01-02 15:04:05"), backup.BackupHash)
			}
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	_ = command.MarkFlagRequired("document")

	return command
}

func complianceCmd() *cobra.Command {
	var docID string

	command := &cobra.Command{
		Use:   "compliance",
		Short: "check a document's backup compliance",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			report, err := svc.backup.Compliance(context.Background(), docID)
			if err != nil {
				return err
			}

			if report.Compliant {
				color.Green("document %s is compliant: %d of %d backups, %d verified", report.DocumentID, report.BackupCount, report.MinBackupCount, report.VerifiedCount)
			} else {
				color.Red("document %s is not compliant: %d of %d backups, %d verified", report.DocumentID, report.BackupCount, report.MinBackupCount, report.VerifiedCount)
			}
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	_ = command.MarkFlagRequired("document")

	return command
}
