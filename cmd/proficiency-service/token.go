package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/proficiency-service/internal/config"
	"github.com/SAP-F-2025/proficiency-service/internal/handlers"
	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a development bearer token with JWT_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to sign tokens in production")
		}

		id, _ := cmd.Flags().GetString("id")
		email, _ := cmd.Flags().GetString("email")
		admin, _ := cmd.Flags().GetBool("admin")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		identity := models.Identity{ID: id, Email: email, Role: models.RoleCandidate}
		if admin {
			identity.Role = models.RoleAdmin
		}
		token, err := handlers.NewJWTAuthenticator(cfg.JWTSecret).Issue(identity, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("id", "dev-candidate", "Subject (user id)")
	tokenCmd.Flags().String("email", "", "Email claim")
	tokenCmd.Flags().Bool("admin", false, "Grant the admin role")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
