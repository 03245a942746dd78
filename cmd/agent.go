package cmd

import (
	"context"

	"github.com/emrgen/custody/internal/metrics"
	"github.com/emrgen/custody/internal/model"
	"github.com/emrgen/custody/internal/service"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "recovery agent directory commands",
}

func init() {
	agentCmd.AddCommand(registerAgentCmd())
	agentCmd.AddCommand(agentStatusCmd())
	agentCmd.AddCommand(agentTrustCmd())
	agentCmd.AddCommand(getAgentCmd())
}

func registerAgentCmd() *cobra.Command {
	var (
		agentID      string
		name         string
		organization string
	)

	command := &cobra.Command{
		Use:   "register",
		Short: "register a new recovery agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			agent, err := svc.agents.RegisterAgent(context.Background(), &service.RegisterAgentRequest{
				Caller:       resolveCaller(cmd),
				AgentID:      agentID,
				Name:         name,
				Organization: organization,
			})
			if err != nil {
				return err
			}

			color.Green("registered agent %s controlled by %s, trust %d", agent.AgentID, agent.AgentAddress, agent.TrustScore)
			return nil
		},
	}

	command.Flags().StringVarP(&agentID, "agent", "a", "", "agent id")
	command.Flags().StringVarP(&name, "name", "n", "", "agent name")
	command.Flags().StringVar(&organization, "org", "", "agent organization")
	_ = command.MarkFlagRequired("agent")
	_ = command.MarkFlagRequired("name")

	return command
}

func agentStatusCmd() *cobra.Command {
	var (
		agentID string
		status  string
	)

	command := &cobra.Command{
		Use:   "status",
		Short: "change an agent's status",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			agent, err := svc.agents.UpdateAgentStatus(context.Background(), &service.UpdateAgentStatusRequest{
				Caller:  resolveCaller(cmd),
				AgentID: agentID,
				Status:  model.AgentStatus(status),
			})
			if err != nil {
				return err
			}

			color.Green("agent %s is now %s", agent.AgentID, agent.Status)
			return nil
		},
	}

	command.Flags().StringVarP(&agentID, "agent", "a", "", "agent id")
	command.Flags().StringVar(&status, "to", "", "active, suspended or revoked")
	_ = command.MarkFlagRequired("agent")
	_ = command.MarkFlagRequired("to")

	return command
}

func agentTrustCmd() *cobra.Command {
	var (
		agentID string
		delta   int
	)

	command := &cobra.Command{
		Use:   "trust",
		Short: "adjust an agent's trust score",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			agent, err := svc.agents.UpdateTrustScore(context.Background(), &service.UpdateTrustScoreRequest{
				Caller:  resolveCaller(cmd),
				AgentID: agentID,
				Delta:   delta,
			})
			if err != nil {
				return err
			}

			color.Green("agent %s trust score is now %d", agent.AgentID, agent.TrustScore)
			return nil
		},
	}

	command.Flags().StringVarP(&agentID, "agent", "a", "", "agent id")
	command.Flags().IntVar(&delta, "delta", 0, "signed trust adjustment")
	_ = command.MarkFlagRequired("agent")
	_ = command.MarkFlagRequired("delta")

	return command
}

func getAgentCmd() *cobra.Command {
	var agentID string

	command := &cobra.Command{
		Use:   "get",
		Short: "show a recovery agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			agent, err := svc.agents.GetRecoveryAgent(context.Background(), agentID)
			if err != nil {
				return err
			}

			color.Cyan("id:      %s", agent.AgentID)
			color.Cyan("name:    %s", agent.Name)
			color.Cyan("org:     %s", agent.Organization)
			color.Cyan("address: %s", agent.AgentAddress)
			color.Cyan("status:  %s", agent.Status)
			color.Cyan("trust:   %d", agent.TrustScore)
			return nil
		},
	}

	command.Flags().StringVarP(&agentID, "agent", "a", "", "agent id")
	_ = command.MarkFlagRequired("agent")

	return command
}
