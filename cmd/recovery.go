package cmd

import (
	"context"

	"github.com/emrgen/custody/internal/metrics"
	"github.com/emrgen/custody/internal/service"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var recoveryCmd = &cobra.Command{
	Use:   "recovery",
	Short: "recovery workflow commands",
}

func init() {
	recoveryCmd.AddCommand(configureRecoveryCmd())
	recoveryCmd.AddCommand(requestRecoveryCmd())
	recoveryCmd.AddCommand(approveRecoveryCmd())
	recoveryCmd.AddCommand(executeRecoveryCmd())
	recoveryCmd.AddCommand(rejectRecoveryCmd())
	recoveryCmd.AddCommand(getRecoveryCmd())
}

func configureRecoveryCmd() *cobra.Command {
	var (
		docID      string
		threshold  int
		delayHours int
		recipients []string
		window     int
	)

	command := &cobra.Command{
		Use:   "configure",
		Short: "set a document's recovery settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			settings, err := svc.recovery.SetRecoverySettings(context.Background(), &service.SetRecoverySettingsRequest{
				Caller:               resolveCaller(cmd),
				DocumentID:           docID,
				RecoveryThreshold:    threshold,
				RecoveryDelayHours:   delayHours,
				DesignatedRecipients: recipients,
				RequestWindowHours:   window,
			})
			if err != nil {
				return err
			}

			color.Green("document %s recoverable with %d approvals after %dh delay", settings.DocumentID, settings.RecoveryThreshold, settings.RecoveryDelayHours)
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	command.Flags().IntVarP(&threshold, "threshold", "t", 1, "approvals required")
	command.Flags().IntVar(&delayHours, "delay", 24, "cooling-off delay in hours")
	command.Flags().StringSliceVarP(&recipients, "recipients", "r", nil, "designated recipients")
	command.Flags().IntVar(&window, "window", 0, "request window in hours, 0 for the default")
	_ = command.MarkFlagRequired("document")
	_ = command.MarkFlagRequired("recipients")

	return command
}

func requestRecoveryCmd() *cobra.Command {
	var (
		docID     string
		requestID string
		reason    string
	)

	command := &cobra.Command{
		Use:   "request",
		Short: "open a recovery request",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			if requestID == "" {
				requestID = uuid.New().String()
			}

			request, err := svc.recovery.CreateRecoveryRequest(context.Background(), &service.CreateRecoveryRequestRequest{
				Caller:        resolveCaller(cmd),
				RequestID:     requestID,
				DocumentID:    docID,
				RequestReason: reason,
			})
			if err != nil {
				return err
			}

			color.Green("recovery request %s opened, expires %s", request.RequestID, request.ExpirationTime.Format("2006-01-02 15:04:05"))
			return nil
		},
	}

	command.Flags().StringVarP(&docID, "document", "d", "", "document id")
	command.Flags().StringVarP(&requestID, "request", "q", "", "request id, generated when omitted")
	command.Flags().StringVar(&reason, "reason", "", "why recovery is needed")
	_ = command.MarkFlagRequired("document")

	return command
}

func approveRecoveryCmd() *cobra.Command {
	var (
		requestID string
		agentID   string
		notes     string
	)

	command := &cobra.Command{
		Use:   "approve",
		Short: "approve a recovery request as an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			request, err := svc.recovery.ApproveRecoveryRequest(context.Background(), &service.ApproveRecoveryRequestRequest{
				Caller:    resolveCaller(cmd),
				RequestID: requestID,
				AgentID:   agentID,
				Notes:     notes,
			})
			if err != nil {
				return err
			}

			color.Green("approval recorded, request %s is %s", request.RequestID, request.Status)
			return nil
		},
	}

	command.Flags().StringVarP(&requestID, "request", "q", "", "request id")
	command.Flags().StringVarP(&agentID, "agent", "a", "", "approving agent id")
	command.Flags().StringVar(&notes, "notes", "", "approval notes")
	_ = command.MarkFlagRequired("request")
	_ = command.MarkFlagRequired("agent")

	return command
}

func executeRecoveryCmd() *cobra.Command {
	var (
		requestID string
		notes     string
	)

	command := &cobra.Command{
		Use:   "execute",
		Short: "execute an approved recovery request",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			event, err := svc.recovery.ExecuteRecovery(context.Background(), &service.ExecuteRecoveryRequest{
				Caller:        resolveCaller(cmd),
				RequestID:     requestID,
				RecoveryNotes: notes,
			})
			if err != nil {
				return err
			}

			color.Green("document %s recovered to %s via %s", event.DocumentID, event.Recipient, event.RecoveryMethod)
			return nil
		},
	}

	command.Flags().StringVarP(&requestID, "request", "q", "", "request id")
	command.Flags().StringVar(&notes, "notes", "", "recovery notes")
	_ = command.MarkFlagRequired("request")

	return command
}

func rejectRecoveryCmd() *cobra.Command {
	var (
		requestID string
		reason    string
	)

	command := &cobra.Command{
		Use:   "reject",
		Short: "reject a pending recovery request as the document owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			request, err := svc.recovery.RejectRecoveryRequest(context.Background(), &service.RejectRecoveryRequestRequest{
				Caller:    resolveCaller(cmd),
				RequestID: requestID,
				Reason:    reason,
			})
			if err != nil {
				return err
			}

			color.Green("recovery request %s rejected", request.RequestID)
			return nil
		},
	}

	command.Flags().StringVarP(&requestID, "request", "q", "", "request id")
	command.Flags().StringVar(&reason, "reason", "", "rejection reason")
	_ = command.MarkFlagRequired("request")

	return command
}

func getRecoveryCmd() *cobra.Command {
	var requestID string

	command := &cobra.Command{
		Use:   "get",
		Short: "show a recovery request",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			request, err := svc.recovery.GetRecoveryRequest(context.Background(), requestID)
			if err != nil {
				return err
			}

			color.Cyan("id:        %s", request.RequestID)
			color.Cyan("document:  %s", request.DocumentID)
			color.Cyan("requester: %s", request.Requester)
			color.Cyan("status:    %s", request.Status)
			color.Cyan("opened:    %s", request.RequestTime.Format("2006-01-02 15:04:05"))
			color.Cyan("expires:   %s", request.ExpirationTime.Format("2006-01-02 15:04:05"))
			if request.ApprovedAt != nil {
				color.Cyan("approved:  %s", request.ApprovedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	command.Flags().StringVarP(&requestID, "request", "q", "", "request id")
	_ = command.MarkFlagRequired("request")

	return command
}
