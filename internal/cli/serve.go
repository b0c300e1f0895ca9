// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/2dChan/floorplan/cache"
	"github.com/2dChan/floorplan/internal/server"
	"github.com/spf13/cobra"
)

const (
	envAddr     = "FLOORPLAN_ADDR"
	envRedisURL = "FLOORPLAN_REDIS_URL"
	envCacheDir = "FLOORPLAN_CACHE_DIR"

	defaultAddr = ":8080"
	redisPrefix = "floorplan:"
)

type serveOptions struct {
	addr     string
	redisURL string
	cacheDir string
	ttl      time.Duration
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the optimizer over HTTP",
		Long: fmt.Sprintf(`Serve POST /v1/optimize, GET /v1/schedule and GET /healthz.

Results are cached in Redis with --redis, in a directory with --cache-dir,
or not at all. Flags default to $%s, $%s and $%s.`, envAddr, envRedisURL, envCacheDir),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", envOr(envAddr, defaultAddr), "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis", os.Getenv(envRedisURL), "Redis URL for the result cache")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", os.Getenv(envCacheDir), "directory for the result cache")
	cmd.Flags().DurationVar(&opts.ttl, "cache-ttl", 24*time.Hour, "expiry of cached results (0 keeps them)")

	return cmd
}

func serve(ctx context.Context, opts serveOptions) error {
	logger := loggerFromContext(ctx)

	c, err := openCache(ctx, opts)
	if err != nil {
		return err
	}
	defer c.Close()

	s := server.New(c, logger, server.WithCacheTTL(opts.ttl))
	return s.ListenAndServe(ctx, opts.addr)
}

// openCache picks Redis over a cache directory over no cache.
func openCache(ctx context.Context, opts serveOptions) (cache.Cache, error) {
	logger := loggerFromContext(ctx)
	switch {
	case opts.redisURL != "":
		c, err := cache.NewRedisCache(ctx, opts.redisURL, redisPrefix)
		if err != nil {
			return nil, err
		}
		logger.Info("using redis cache")
		return c, nil
	case opts.cacheDir != "":
		c, err := cache.NewFileCache(opts.cacheDir)
		if err != nil {
			return nil, err
		}
		logger.Info("using file cache", "dir", opts.cacheDir)
		return c, nil
	}
	return cache.NewNullCache(), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
