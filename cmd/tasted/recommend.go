package main

import (
	"github.com/spf13/cobra"

	"github.com/tastelab/tasted/internal/index"
	"github.com/tastelab/tasted/internal/recommend"
)

var (
	recCatalogPath  string
	recSnapshotPath string
	recUserText     string
	recTopK         int
	recPoolSize     int
	recGenres       []string
	recYearFrom     int
	recYearTo       int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend films from the indexed catalog",
	Long: `Retrieve a candidate pool matching the taste description, then select
the final recommendations. With a configured generator the selection is
delegated to it, constrained to the retrieved pool; without one the
top-scored candidates are returned directly.

Examples:
  tasted recommend --catalog movies.json --user "warm and funny, nothing scary"

  # Narrow the pool by attributes
  tasted recommend --catalog movies.json --user "a tense thriller" \
    --genres Thriller --year-from 2010 --top-k 3`,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&recCatalogPath, "catalog", "", "JSON catalog file (required)")
	recommendCmd.Flags().StringVar(&recSnapshotPath, "snapshot", "", "index snapshot path (default from config)")
	recommendCmd.Flags().StringVar(&recUserText, "user", "", "taste description (required)")
	recommendCmd.Flags().IntVar(&recTopK, "top-k", 0, "number of recommendations (default from config)")
	recommendCmd.Flags().IntVar(&recPoolSize, "pool", 0, "candidate pool size (default from config)")
	recommendCmd.Flags().StringSliceVar(&recGenres, "genres", nil, "keep only candidates in these genres")
	recommendCmd.Flags().IntVar(&recYearFrom, "year-from", 0, "earliest release year")
	recommendCmd.Flags().IntVar(&recYearTo, "year-to", 0, "latest release year")
	_ = recommendCmd.MarkFlagRequired("catalog")
	_ = recommendCmd.MarkFlagRequired("user")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	snapshotPath := recSnapshotPath
	if snapshotPath == "" {
		snapshotPath = a.cfg.Index.SnapshotPath
	}
	idx, err := a.loadOrBuildIndex(cmd.Context(), recCatalogPath, snapshotPath)
	if err != nil {
		return err
	}

	gen, err := a.generator()
	if err != nil {
		return err
	}

	topK := recTopK
	if topK <= 0 {
		topK = a.cfg.Recommend.TopK
	}
	poolSize := recPoolSize
	if poolSize <= 0 {
		poolSize = a.cfg.Recommend.PoolSize
	}
	var filters *index.Filters
	if len(recGenres) > 0 || recYearFrom != 0 || recYearTo != 0 {
		filters = &index.Filters{Genres: recGenres, YearFrom: recYearFrom, YearTo: recYearTo}
	}

	r := recommend.NewRecommender(index.NewHandle(idx), a.builder, gen, a.logger)
	resp, err := r.Recommend(cmd.Context(), recommend.Request{
		UserText: recUserText,
		TopK:     topK,
		PoolSize: poolSize,
		Filters:  filters,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}
