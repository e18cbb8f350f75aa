package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	permissionDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/permission"
	userDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/user"
	"github.com/gestaolite/backoffice/internal/gateway"
	"github.com/gestaolite/backoffice/pkg/logger"
)

var (
	seedName           string
	seedPhone          string
	seedCompany        string
	seedAllPermissions bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a demo user on the backend",
	Long:  `Create permissions and a company for a demo user on the remote business API`,
	Run: func(cmd *cobra.Command, args []string) {
		runSeed()
	},
}

// staticSession satisfies the gateway's session source with a fixed identity,
// letting the seeder call the backend without a login flow.
type staticSession struct {
	user *userDatamodel.User
}

func (s *staticSession) CurrentUser() *userDatamodel.User { return s.user }
func (s *staticSession) Scope() context.Context           { return context.Background() }

func runSeed() {
	logger.Init("development")
	lg := logger.LoggerWrapper()

	config, err := loadConfig(".")
	if err != nil {
		lg.Error("failed to load config", "error", err)
		return
	}

	client := seedClient(gateway.Config{
		BaseURL:        config.Backend.BaseURL,
		RequestTimeout: config.Backend.RequestTimeout,
	}, lg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seedBackend(ctx, client, lg); err != nil {
		lg.Error("seed failed", "error", err)
	}
}

func seedClient(cfg gateway.Config, lg *slog.Logger) *gateway.Client {
	seedUser := &userDatamodel.User{Name: seedName, Phone: seedPhone}
	return gateway.NewClient(cfg, &staticSession{user: seedUser}, gateway.NewErrorFlag(), lg)
}

// seedBackend provisions the permission record and one owned company for the
// configured demo user.
func seedBackend(ctx context.Context, client *gateway.Client, lg *slog.Logger) error {
	keys := permissionDatamodel.DefaultGrantKeys()
	if seedAllPermissions {
		keys = permissionDatamodel.KnownKeys()
	}

	if err := client.ReplacePermissions(ctx, seedPhone, keys); err != nil {
		return fmt.Errorf("seed permissions for %s: %w", seedPhone, err)
	}
	lg.Info("seeded permissions", "phone", seedPhone, "count", len(keys))

	created, err := client.CreateCompany(ctx, seedCompany, seedPhone)
	if err != nil {
		return fmt.Errorf("seed company %q: %w", seedCompany, err)
	}
	lg.Info("seeded company", "id", created.ID, "name", created.Name)
	return nil
}
