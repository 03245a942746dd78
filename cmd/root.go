package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "custody",
	Short: "document custody ledger",
	Example: `custody document register -d <doc-id> -n <name> -s <hex-hash>
custody recovery configure -d <doc-id> -t 2 --delay 24 -r alice,bob
custody recovery request -d <doc-id> -q <request-id>
custody recovery approve -q <request-id> -a <agent-id>
custody recovery execute -q <request-id>
custody backup record -d <doc-id> -l <location-id> -s <hex-hash>
custody backup verify -d <doc-id> -l <location-id> --ok`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("caller", "", "caller identity, overrides the saved context")

	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(accessCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(locationCmd)
	rootCmd.AddCommand(recoveryCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(dbCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
