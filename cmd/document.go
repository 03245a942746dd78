package cmd

import (
	"context"

	"github.com/emrgen/custody/internal/metrics"
	"github.com/emrgen/custody/internal/model"
	"github.com/emrgen/custody/internal/service"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "document registry commands",
}

func init() {
	documentCmd.AddCommand(registerDocumentCmd())
	documentCmd.AddCommand(updateDocumentCmd())
	documentCmd.AddCommand(documentStatusCmd())
	documentCmd.AddCommand(transferDocumentCmd())
	documentCmd.AddCommand(getDocumentCmd())
	documentCmd.AddCommand(documentVersionsCmd())
}

func registerDocumentCmd() *cobra.Command {
	var (
		docID       string
		name        string
		description string
		hash        string
		category    string
	)

	command := &cobra.Command{
		Use:   "register",
		Short: "register a new document",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			docHash, err := decodeHash(hash)
			if err != nil {
				return err
			}

			doc, err := svc.registry.RegisterDocument(context.Background(), &service.RegisterDocumentRequest{
				Caller:       resolveCaller(cmd),
				DocumentID:   docID,
				Name:         name,
				Description:  description,
				DocumentHash: docHash,
				Category:     category,
			})
			if err != nil {
				return err
			}

			color.Green("registered document %s owned by %s", doc.ID, doc.Owner)
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	command.Flags().StringVarP(&name, "name", "n", "", "document name")
	command.Flags().StringVar(&description, "description", "", "document description")
	command.Flags().StringVarP(&hash, "hash", "s", "", "hex encoded 32 byte document hash")
	command.Flags().StringVar(&category, "category", "", "document category")
	_ = command.MarkFlagRequired("document")
	_ = command.MarkFlagRequired("name")
	_ = command.MarkFlagRequired("hash")

	return command
}

func updateDocumentCmd() *cobra.Command {
	var (
		docID       string
		name        string
		description string
		hash        string
		notes       string
	)

	command := &cobra.Command{
		Use:   "update",
		Short: "record a new version of a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			docHash, err := decodeHash(hash)
			if err != nil {
				return err
			}

			doc, err := svc.registry.UpdateDocument(context.Background(), &service.UpdateDocumentRequest{
				Caller:       resolveCaller(cmd),
				DocumentID:   docID,
				Name:         name,
				Description:  description,
				DocumentHash: docHash,
				ChangeNotes:  notes,
			})
			if err != nil {
				return err
			}

			color.Green("document %s is now at version %d", doc.ID, doc.Version)
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	command.Flags().StringVarP(&name, "name", "n", "", "document name")
	command.Flags().StringVar(&description, "description", "", "document description")
	command.Flags().StringVarP(&hash, "hash", "s", "", "hex encoded 32 byte document hash")
	command.Flags().StringVar(&notes, "notes", "", "change notes")
	_ = command.MarkFlagRequired("document")
	_ = command.MarkFlagRequired("hash")

	return command
}

func documentStatusCmd() *cobra.Command {
	var (
		docID  string
		status string
	)

	command := &cobra.Command{
		Use:   "status",
		Short: "change a document's lifecycle status",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			doc, err := svc.registry.ChangeDocumentStatus(context.Background(), &service.ChangeDocumentStatusRequest{
				Caller:     resolveCaller(cmd),
				DocumentID: docID,
				Status:     model.DocumentStatus(status),
			})
			if err != nil {
				return err
			}

			color.Green("document %s is now %s", doc.ID, doc.Status)
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	command.Flags().StringVar(&status, "to", "", "active, archived or revoked")
	_ = command.MarkFlagRequired("document")
	_ = command.MarkFlagRequired("to")

	return command
}

func transferDocumentCmd() *cobra.Command {
	var (
		docID    string
		newOwner string
	)

	command := &cobra.Command{
		Use:   "transfer",
		Short: "transfer document ownership",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			doc, err := svc.registry.TransferOwnership(context.Background(), &service.TransferOwnershipRequest{
				Caller:     resolveCaller(cmd),
				DocumentID: docID,
				NewOwner:   newOwner,
			})
			if err != nil {
				return err
			}

			color.Green("document %s is now owned by %s", doc.ID, doc.Owner)
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	command.Flags().StringVar(&newOwner, "to", "", "new owner")
	_ = command.MarkFlagRequired("document")
	_ = command.MarkFlagRequired("to")

	return command
}

func getDocumentCmd() *cobra.Command {
	var docID string

	command := &cobra.Command{
		Use:   "get",
		Short: "show a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			doc, err := svc.registry.GetDocument(context.Background(), docID)
			if err != nil {
				return err
			}

			color.Cyan("id:       %s", doc.ID)
			color.Cyan("name:     %s", doc.Name)
			color.Cyan("owner:    %s", doc.Owner)
			color.Cyan("status:   %s", doc.Status)
			color.Cyan("version:  %d", doc.Version)
			color.Cyan("hash:     %s", doc.DocumentHash)
			color.Cyan("category: %s", doc.Category)
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	_ = command.MarkFlagRequired("document")

	return command
}

func documentVersionsCmd() *cobra.Command {
	var docID string

	command := &cobra.Command{
		Use:   "versions",
		Short: "list a document's version history",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			versions, err := svc.registry.ListDocumentVersions(context.Background(), docID)
			if err != nil {
				return err
			}

			for _, v := range versions {
				color.Cyan("v%d %s by %s at %s  %s", v.Version, v.DocumentHash, v.UpdatedBy, v.UpdateTime.Format("2006-01-02 15:04:05"), v.ChangeNotes)
			}
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	_ = command.MarkFlagRequired("document")

	return command
}
