package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "proficiency-service",
	Short:         "Skill proficiency assessment service",
	Long:          "Runs timed, proctored skill assessments generated from a role/skill/task catalog and grades them into proficiency reports.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("catalog", "", "Path to a catalog YAML file (overrides CATALOG_FILE)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(tokenCmd)
}

// catalogPath returns --catalog when set, otherwise the configured path.
func catalogPath(cmd *cobra.Command, configured string) string {
	if p, _ := cmd.Flags().GetString("catalog"); p != "" {
		return p
	}
	return configured
}
