package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benvon/questlog/internal/config"
	"github.com/benvon/questlog/internal/gamification"
	"github.com/benvon/questlog/internal/lifecycle"
	"github.com/benvon/questlog/internal/storage"
)

// StoreOpener opens the local store; the returned func releases it
type StoreOpener func(ctx context.Context) (storage.Store, *config.Config, func(), error)

// OpenRedisStore connects to the store configured by the environment
func OpenRedisStore(ctx context.Context) (storage.Store, *config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	client, err := storage.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	store := storage.NewRedisStore(client, cfg.RedisKeyPrefix)
	return store, cfg, func() { _ = store.Close() }, nil
}

// NewRootCmd builds the questctl command tree
func NewRootCmd(open StoreOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "questctl",
		Short:         "Admin tool for questlog",
		Long:          "Inspect the achievement catalog, the profile and today's missions, or clear stored collections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCatalogCmd())
	root.AddCommand(newProfileCmd(open))
	root.AddCommand(newMissionsCmd(open))
	root.AddCommand(newClearCmd(open))
	return root
}

// loadManager hydrates a lifecycle manager from the opened store
func loadManager(ctx context.Context, open StoreOpener) (*lifecycle.Manager, func(), error) {
	catalog, err := gamification.LoadCatalog()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	store, cfg, release, err := open(ctx)
	if err != nil {
		return nil, nil, err
	}
	m := lifecycle.New(store, catalog, lifecycle.Options{
		Location:           cfg.Location,
		DefaultPreferences: cfg.DefaultPreferences(),
	})
	if err := m.Load(ctx); err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to load state: %w", err)
	}
	return m, release, nil
}
