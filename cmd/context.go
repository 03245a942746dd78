package cmd

import (
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "manage the caller identity used by other commands",
}

func init() {
	contextCmd.AddCommand(setContextCmd())
	contextCmd.AddCommand(showContextCmd())
}

func contextFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".custody.yaml"
	}
	return filepath.Join(home, ".custody.yaml")
}

func loadContext() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(contextFile())
	_ = v.ReadInConfig()
	return v
}

// resolveCaller prefers the --caller flag, then the saved context.
func resolveCaller(cmd *cobra.Command) string {
	caller, _ := cmd.Flags().GetString("caller")
	if caller != "" {
		return caller
	}

	caller = loadContext().GetString("caller")
	if caller == "" {
		color.Red("no caller set, use --caller or `custody context set`")
		os.Exit(1)
	}
	return caller
}

func setContextCmd() *cobra.Command {
	var caller string

	command := &cobra.Command{
		Use:   "set",
		Short: "save the caller identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := loadContext()
			v.Set("caller", caller)
			if err := v.WriteConfigAs(contextFile()); err != nil {
				return err
			}

			color.Green("caller set to %s", caller)
			return nil
		},
	}

	command.Flags().StringVarP(&caller, "caller", "c", "", "caller identity")
	_ = command.MarkFlagRequired("caller")

	return command
}

func showContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "show the saved caller identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller := loadContext().GetString("caller")
			if caller == "" {
				color.Yellow("no caller set")
				return nil
			}

			color.Green("caller: %s", caller)
			return nil
		},
	}
}
