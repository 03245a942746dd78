package cmd

import (
	"context"

	"github.com/emrgen/custody/internal/metrics"
	"github.com/emrgen/custody/internal/model"
	"github.com/emrgen/custody/internal/service"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "backup location directory commands",
}

func init() {
	locationCmd.AddCommand(registerLocationCmd())
	locationCmd.AddCommand(locationStatusCmd())
	locationCmd.AddCommand(locationReliabilityCmd())
	locationCmd.AddCommand(getLocationCmd())
}

func registerLocationCmd() *cobra.Command {
	var (
		locationID   string
		name         string
		description  string
		locationType string
		region       string
	)

	command := &cobra.Command{
		Use:   "register",
		Short: "register a new backup location",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			location, err := svc.location.RegisterLocation(context.Background(), &service.RegisterLocationRequest{
				Caller:           resolveCaller(cmd),
				LocationID:       locationID,
				Name:             name,
				Description:      description,
				LocationType:     locationType,
				GeographicRegion: region,
			})
			if err != nil {
				return err
			}

			color.Green("registered location %s operated by %s, reliability %d", location.LocationID, location.Operator, location.ReliabilityScore)
			return nil
		},
	}

	command.Flags().StringVarP(&locationID, "location", "l", "", "location id")
	command.Flags().StringVarP(&name, "name", "n", "", "location name")
	command.Flags().StringVar(&description, "description", "", "location description")
	command.Flags().StringVar(&locationType, "type", "", "location type, e.g. cold-storage")
	command.Flags().StringVar(&region, "region", "", "geographic region")
	_ = command.MarkFlagRequired("location")
	_ = command.MarkFlagRequired("name")

	return command
}

func locationStatusCmd() *cobra.Command {
	var (
		locationID string
		status     string
	)

	command := &cobra.Command{
		Use:   "status",
		Short: "change a location's status",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			location, err := svc.location.UpdateLocationStatus(context.Background(), &service.UpdateLocationStatusRequest{
				Caller:     resolveCaller(cmd),
				LocationID: locationID,
				Status:     model.LocationStatus(status),
			})
			if err != nil {
				return err
			}

			color.Green("location %s is now %s", location.LocationID, location.Status)
			return nil
		},
	}

	command.Flags().StringVarP(&locationID, "location", "l", "", "location id")
	command.Flags().StringVar(&status, "to", "", "active, inactive or decommissioned")
	_ = command.MarkFlagRequired("location")
	_ = command.MarkFlagRequired("to")

	return command
}

func locationReliabilityCmd() *cobra.Command {
	var (
		locationID string
		delta      int
	)

	command := &cobra.Command{
		Use:   "reliability",
		Short: "adjust a location's reliability score",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			location, err := svc.location.UpdateReliabilityScore(context.Background(), &service.UpdateReliabilityScoreRequest{
				Caller:     resolveCaller(cmd),
				LocationID: locationID,
				Delta:      delta,
			})
			if err != nil {
				return err
			}

			color.Green("location %s reliability is now %d", location.LocationID, location.ReliabilityScore)
			return nil
		},
	}

	command.Flags().StringVarP(&locationID, "location", "l", "", "location id")
	command.Flags().IntVar(&delta, "delta", 0, "signed reliability adjustment")
	_ = command.MarkFlagRequired("location")
	_ = command.MarkFlagRequired("delta")

	return command
}

func getLocationCmd() *cobra.Command {
	var locationID string

	command := &cobra.Command{
		Use:   "get",
		Short: "show a backup location",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(metrics.NewNop())
			defer svc.close()

			location, err := svc.location.GetBackupLocation(context.Background(), locationID)
			if err != nil {
				return err
			}

			color.Cyan("id:          %s", location.LocationID)
			color.Cyan("name:        %s", location.Name)
			color.Cyan("type:        %s", location.LocationType)
			color.Cyan("region:      %s", location.GeographicRegion)
			color.Cyan("operator:    %s", location.Operator)
			color.Cyan("status:      %s", location.Status)
			color.Cyan("reliability: %d", location.ReliabilityScore)
			return nil
		},
	}

	command.Flags().StringVarP(&locationID, "location", "l", "", "location id")
	_ = command.MarkFlagRequired("location")

	return command
}
