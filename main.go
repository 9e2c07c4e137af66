package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
)

var configPath string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "seatbooker",
		Short: "Automates library study-seat bookings and check-ins on the NLB seat booking portal",
	}

	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to configuration file")

	root.AddCommand(newServeCmd())
	root.AddCommand(newBookCmd())
	root.AddCommand(newCheckinCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("seatbooker %s (%s)\n", Version, CommitSHA)
		},
	}
}

func loadRunConfig() (*Config, *Catalog, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	catalog, err := LoadCatalog()
	if err != nil {
		return nil, nil, err
	}
	return config, catalog, nil
}

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
