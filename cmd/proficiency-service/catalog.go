package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/proficiency-service/internal/catalog"
	"github.com/SAP-F-2025/proficiency-service/internal/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the role/skill/task catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-28s  %-32s  %6s\n", "ID", "Name", "Skills")
		fmt.Fprintln(out, strings.Repeat("─", 70))
		for _, r := range cat.Summaries() {
			fmt.Fprintf(out, "%-28s  %-32s  %6d\n", r.ID, r.Name, r.SkillsCount)
		}
		return nil
	},
}

var catalogSkillsCmd = &cobra.Command{
	Use:   "skills <role-id>",
	Short: "List the skills and tasks of a role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		skills, err := cat.Skills(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, s := range skills {
			marker := ""
			if s.IsImportant {
				marker = " *"
			}
			fmt.Fprintf(out, "%s (%s)%s\n", s.Name, s.ID, marker)
			for _, t := range s.Tasks {
				fmt.Fprintf(out, "    %-3s %-28s %s\n", t.Complexity, t.ID, t.Name)
			}
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogSkillsCmd)
}

func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return catalog.Load(catalogPath(cmd, cfg.CatalogFile))
}
