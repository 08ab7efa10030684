package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/mindvault/internal/journal"
	"github.com/rcliao/mindvault/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall",
		Short: "List the entries written on one day",
		RunE:  runRecall,
	}

	cmd.Flags().String("day", "", "Day as YYYY-MM-DD (default: today)")

	RootCmd.AddCommand(cmd)
}

func runRecall(cmd *cobra.Command, args []string) error {
	day, _ := cmd.Flags().GetString("day")
	if day == "" {
		day = time.Now().Format(model.DayLayout)
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	entries, err := s.ByDay(cmd.Context(), day)
	if err != nil {
		return fmt.Errorf("recall: %w", err)
	}

	if formatFlag == "text" {
		if len(entries) == 0 {
			fmt.Println("No entries found for that date.")
		}
		for _, e := range entries {
			fmt.Println(journal.FormatLine(e))
		}
		return nil
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	printJSON(entries)
	return nil
}
