package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/mindvault/internal/model"
	"github.com/rcliao/mindvault/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Find similar journal entries",
		Long:  "Embed the query and list the nearest stored entries, closest first.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().IntP("k", "k", store.DefaultK, "Max results")
	cmd.Flags().Float64("max-distance", 0, "Drop matches farther than this cosine distance (0 keeps all)")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	k, _ := cmd.Flags().GetInt("k")
	maxDist, _ := cmd.Flags().GetFloat64("max-distance")
	query := strings.Join(args, " ")

	s, err := openStore(cmd.Context())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	matches, err := s.Query(cmd.Context(), store.QueryParams{
		Text:        query,
		K:           k,
		MaxDistance: maxDist,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if formatFlag == "text" {
		if len(matches) == 0 {
			fmt.Println("No similar entries found.")
		}
		for _, m := range matches {
			fmt.Printf("%.3f  [%s] %s: %s\n", m.Distance, m.Timestamp.Format("2006-01-02 15:04:05"), m.Emotion, m.Text)
		}
		return nil
	}
	if matches == nil {
		matches = []model.Match{}
	}
	printJSON(matches)
	return nil
}
