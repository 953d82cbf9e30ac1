package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tastelab/tasted/internal/group"
	"github.com/tastelab/tasted/internal/profile"
)

var (
	groupCatalogPath string
	groupMovieID     string
	groupMembers     []string
	groupStrategy    string
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Predict a group's satisfaction with one film",
	Long: `Score a film against every group member's taste description and
aggregate the predictions with the chosen strategy.

Strategies: mean, least_misery, median, trimmed_mean.

Examples:
  tasted group --catalog movies.json --movie m42 \
    --member "loves slow healing dramas" \
    --member "wants something funny and fast paced" \
    --strategy least_misery`,
	RunE: runGroup,
}

func init() {
	groupCmd.Flags().StringVar(&groupCatalogPath, "catalog", "", "JSON catalog file (required)")
	groupCmd.Flags().StringVar(&groupMovieID, "movie", "", "catalog item ID (required)")
	groupCmd.Flags().StringArrayVar(&groupMembers, "member", nil, "taste description, repeat per member (required)")
	groupCmd.Flags().StringVar(&groupStrategy, "strategy", "", "aggregation strategy (default from config)")
	_ = groupCmd.MarkFlagRequired("catalog")
	_ = groupCmd.MarkFlagRequired("movie")
	_ = groupCmd.MarkFlagRequired("member")
}

func runGroup(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	strategyName := groupStrategy
	if strategyName == "" {
		strategyName = a.cfg.Group.Strategy
	}
	strategy, err := group.ParseStrategy(strategyName)
	if err != nil {
		return err
	}

	items, err := loadCatalog(groupCatalogPath)
	if err != nil {
		return err
	}
	var item *profile.Item
	for i := range items {
		if items[i].ID == groupMovieID {
			item = &items[i]
			break
		}
	}
	if item == nil {
		return fmt.Errorf("movie %q not found in catalog", groupMovieID)
	}
	candidate := a.builder.FromItem(*item)

	members := make([]group.Member, 0, len(groupMembers))
	for i, text := range groupMembers {
		p := a.builder.FromText(text)
		members = append(members, group.Member{
			ID:      fmt.Sprintf("member-%d", i+1),
			Profile: p,
			Tags:    profile.TagSet{Boost: a.builder.ExtractTags(p, profile.DefaultExtractThreshold)},
		})
	}

	agg := group.NewAggregator(a.cfg.ScoringOptions(), a.cfg.Group.Workers, a.logger)
	result, err := agg.Aggregate(cmd.Context(), members, candidate, strategy)
	if err != nil {
		return err
	}

	return printJSON(map[string]any{
		"movie":  map[string]string{"id": item.ID, "title": item.Title},
		"result": result,
	})
}
