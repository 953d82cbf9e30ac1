package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tastelab/tasted/internal/explain"
	"github.com/tastelab/tasted/internal/profile"
	"github.com/tastelab/tasted/internal/similarity"
)

var (
	scoreCatalogPath string
	scoreUserText    string
	scoreMovieID     string
	scoreBoostTags   []string
	scoreDislikeTags []string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score how well one film matches a taste description",
	Long: `Profile the user's taste description, profile the named catalog film,
and report the satisfaction prediction with an explanation.

Examples:
  tasted score --catalog movies.json --movie m42 \
    --user "something calm and healing after a long week"

  # Steer scoring with explicit tag preferences
  tasted score --catalog movies.json --movie m42 \
    --user "a quiet drama" --boost healing --dislike scary`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreCatalogPath, "catalog", "", "JSON catalog file (required)")
	scoreCmd.Flags().StringVar(&scoreUserText, "user", "", "taste description (required)")
	scoreCmd.Flags().StringVar(&scoreMovieID, "movie", "", "catalog item ID (required)")
	scoreCmd.Flags().StringSliceVar(&scoreBoostTags, "boost", nil, "tags that should raise the score")
	scoreCmd.Flags().StringSliceVar(&scoreDislikeTags, "dislike", nil, "tags that should lower the score")
	_ = scoreCmd.MarkFlagRequired("catalog")
	_ = scoreCmd.MarkFlagRequired("user")
	_ = scoreCmd.MarkFlagRequired("movie")
}

func runScore(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	items, err := loadCatalog(scoreCatalogPath)
	if err != nil {
		return err
	}
	var item *profile.Item
	for i := range items {
		if items[i].ID == scoreMovieID {
			item = &items[i]
			break
		}
	}
	if item == nil {
		return fmt.Errorf("movie %q not found in catalog", scoreMovieID)
	}

	userProfile := a.builder.FromText(scoreUserText)
	candidate := a.builder.FromItem(*item)
	tags := profile.TagSet{Boost: scoreBoostTags, Dislike: scoreDislikeTags}

	result, err := similarity.Score(userProfile, candidate, tags, a.cfg.ScoringOptions())
	if err != nil {
		return err
	}

	gen, err := a.generator()
	if err != nil {
		return err
	}
	synth := explain.NewSynthesizer(gen, a.logger)
	explanation := synth.Explain(cmd.Context(), explain.Input{
		Result:       result,
		Title:        item.Title,
		LikedTags:    scoreBoostTags,
		DislikedTags: scoreDislikeTags,
	})

	return printJSON(map[string]any{
		"movie":       map[string]string{"id": item.ID, "title": item.Title},
		"result":      result,
		"explanation": explanation,
	})
}
