package main

import (
	"github.com/spf13/cobra"

	"github.com/tastelab/tasted/internal/index"
)

var (
	indexCatalogPath  string
	indexSnapshotPath string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Candidate index operations",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Profile a catalog and build the candidate index",
	Long: `Profile every catalog item, build the candidate index, and write its
snapshot. A later run with the same snapshot path reuses the snapshot
instead of re-profiling the catalog.

Examples:
  # Build from a catalog file
  tasted index build --catalog movies.json --snapshot index.json

  # Force a rebuild by pointing at a fresh snapshot path
  tasted index build --catalog movies.json --snapshot index-v2.json`,
	RunE: runIndexBuild,
}

func init() {
	indexCmd.AddCommand(indexBuildCmd)
	indexBuildCmd.Flags().StringVar(&indexCatalogPath, "catalog", "", "JSON catalog file (required)")
	indexBuildCmd.Flags().StringVar(&indexSnapshotPath, "snapshot", "", "snapshot path (default from config)")
	_ = indexBuildCmd.MarkFlagRequired("catalog")
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	snapshotPath := indexSnapshotPath
	if snapshotPath == "" {
		snapshotPath = a.cfg.Index.SnapshotPath
	}

	items, err := loadCatalog(indexCatalogPath)
	if err != nil {
		return err
	}
	idx, err := index.BuildFromItems(cmd.Context(), a.tax, a.builder, items, a.cfg.Index.Workers, a.logger)
	if err != nil {
		return err
	}
	if snapshotPath != "" {
		if err := idx.Save(snapshotPath); err != nil {
			return err
		}
	}

	return printJSON(map[string]any{
		"catalog_items": len(items),
		"indexed":       idx.Len(),
		"dimensions":    idx.Dim(),
		"snapshot":      snapshotPath,
	})
}
