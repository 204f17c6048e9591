package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version    = "dev"
	configPath string
)

// @title           Praise Todo API
// @version         1.0
// @description     A task manager that rewards completed work with points, streaks and achievements.
// @BasePath        /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:     "praise-todo",
		Short:   "Praise Todo - gamified personal task manager backend",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config.yaml or ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
