package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/firefox-exe/repolang/internal/config"
	"github.com/firefox-exe/repolang/internal/pipeline"
	"github.com/firefox-exe/repolang/pkg/cache"
	"github.com/firefox-exe/repolang/pkg/github"
	"github.com/firefox-exe/repolang/pkg/logging"
)

// newRunCmd creates the `repolang run` command.
func newRunCmd() *cobra.Command {
	var (
		configPath string
		dataDir    string
		skipUpload bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the extraction and upload pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := logging.Setup(logging.Config{
				Level:  logging.LogLevel(cfg.Log.Level),
				Pretty: cfg.Log.Pretty,
			})

			token, err := config.Token()
			if err != nil {
				return err
			}

			client, err := github.New(github.DefaultConfig(token))
			if err != nil {
				return err
			}

			var snapshots *cache.Manager
			if cfg.Redis.Enabled {
				redisClient := redis.NewClient(&redis.Options{
					Addr: cfg.Redis.Addr,
					DB:   cfg.Redis.DB,
				})
				snapshots = cache.NewManager(redisClient, cfg.Redis.SnapshotTTL())
				logger.Info().Str("addr", cfg.Redis.Addr).Msg("Snapshot cache enabled")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p := pipeline.New(cfg, client, snapshots)
			p.SkipUpload = skipUpload

			summary, err := p.Run(ctx)
			if err != nil {
				return err
			}

			if summary.OrgsFailed > 0 {
				return fmt.Errorf("%d of %d organizations failed",
					summary.OrgsFailed, summary.OrgsFailed+summary.OrgsProcessed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "repolang.toml", "path to the TOML configuration file")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "override the CSV output directory")
	cmd.Flags().BoolVar(&skipUpload, "skip-upload", false, "extract and write CSV files without uploading")

	return cmd
}
