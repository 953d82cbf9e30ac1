// Package main implements the tasted CLI for taste profiling, satisfaction
// scoring, group aggregation, and constrained recommendation.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tastelab/tasted/internal/config"
	"github.com/tastelab/tasted/internal/generate"
	"github.com/tastelab/tasted/internal/index"
	"github.com/tastelab/tasted/internal/logging"
	"github.com/tastelab/tasted/internal/profile"
	"github.com/tastelab/tasted/internal/taxonomy"
)

var (
	// configPath is the optional YAML config file location.
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tasted",
	Short: "Taste-based film matching and recommendation",
	Long: `tasted profiles free-form taste descriptions and film metadata against a
fixed tag taxonomy, scores how well films match a person or a group, and
recommends titles from a system-controlled candidate pool.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(recommendCmd)
}

// app bundles the pieces every command needs.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	tax     taxonomy.Taxonomy
	builder *profile.Builder
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	tax := taxonomy.Load(cfg.Taxonomy.Path, logger)
	return &app{
		cfg:     cfg,
		logger:  logger,
		tax:     tax,
		builder: profile.NewBuilder(tax, nil),
	}, nil
}

// generator returns the configured LLM client, or nil when disabled.
func (a *app) generator() (generate.Generator, error) {
	if !a.cfg.Generator.Enabled {
		return nil, nil
	}
	client, err := generate.NewClient(a.cfg.Generator.ClientConfig)
	if err != nil {
		return nil, fmt.Errorf("building generator client: %w", err)
	}
	return client, nil
}

// loadCatalog reads a JSON array of catalog items.
func loadCatalog(path string) ([]profile.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	var items []profile.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return items, nil
}

// loadOrBuildIndex reuses a snapshot when one loads cleanly, otherwise
// profiles the catalog and builds fresh, saving the snapshot for next time.
func (a *app) loadOrBuildIndex(ctx context.Context, catalogPath, snapshotPath string) (*index.Index, error) {
	if snapshotPath != "" {
		if idx, err := index.Load(snapshotPath, a.logger); err == nil {
			a.logger.Info("loaded index snapshot",
				zap.String("path", snapshotPath), zap.Int("candidates", idx.Len()))
			return idx, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			a.logger.Warn("index snapshot unusable, rebuilding",
				zap.String("path", snapshotPath), zap.Error(err))
		}
	}

	items, err := loadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	idx, err := index.BuildFromItems(ctx, a.tax, a.builder, items, a.cfg.Index.Workers, a.logger)
	if err != nil {
		return nil, err
	}
	if snapshotPath != "" {
		if err := idx.Save(snapshotPath); err != nil {
			a.logger.Warn("saving index snapshot failed", zap.String("path", snapshotPath), zap.Error(err))
		}
	}
	return idx, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
