package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/gestaolite/backoffice/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Backoffice gateway",
	Long:  `Session, permission and navigation gateway in front of the business API.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	// Check if we're running in Docker environment
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		// Load configuration from environment variables (Docker deployment)
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	// Load configuration from file (development)
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func init() {
	seedCmd.Flags().StringVar(&seedName, "name", "Usuário Demo", "Name of the seeded user")
	seedCmd.Flags().StringVar(&seedPhone, "phone", "11999990000", "Phone of the seeded user")
	seedCmd.Flags().StringVar(&seedCompany, "company", "Empresa Demo", "Name of the seeded company")
	seedCmd.Flags().BoolVar(&seedAllPermissions, "all-permissions", false, "Grant every menu permission instead of the default set")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(seedCmd)
}
