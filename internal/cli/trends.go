package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/mindvault/internal/journal"
	"github.com/rcliao/mindvault/internal/report"
)

func init() {
	trends := &cobra.Command{
		Use:         "trends",
		Short:       "Count moods in the journal",
		Long:        "Count the mood label of every journal line. With --png, also draw a bar chart.",
		Annotations: map[string]string{noModels: "true"},
		Run:         runTrends,
	}
	trends.Flags().String("png", "", "Write a bar chart to this PNG file")

	cloud := &cobra.Command{
		Use:         "wordcloud",
		Short:       "Count words in the journal",
		Long:        "Count the words of every journal line, without timestamps and mood labels, and lay them out as a word cloud.",
		Annotations: map[string]string{noModels: "true"},
		Run:         runWordCloud,
	}
	cloud.Flags().IntP("top", "n", 20, "Words to print in text format")

	RootCmd.AddCommand(trends, cloud)
}

// readJournal exits with the user-facing message when there is no journal.
func readJournal() []string {
	lines, err := openJournal().Lines()
	if errors.Is(err, journal.ErrNoJournal) {
		fmt.Fprintln(os.Stderr, report.NoJournalMessage)
		os.Exit(1)
	}
	if err != nil {
		exitErr("read journal", err)
	}
	return lines
}

func runTrends(cmd *cobra.Command, args []string) {
	pngPath, _ := cmd.Flags().GetString("png")

	counts, err := report.Trends(readJournal())
	if errors.Is(err, report.ErrNoData) {
		fmt.Fprintln(os.Stderr, report.NoTrendsMessage)
		os.Exit(1)
	}

	if pngPath != "" {
		f, err := os.Create(pngPath)
		if err != nil {
			exitErr("create chart", err)
		}
		if err := report.RenderTrendsPNG(f, counts); err != nil {
			f.Close()
			exitErr("chart", err)
		}
		if err := f.Close(); err != nil {
			exitErr("write chart", err)
		}
	}

	if formatFlag == "text" {
		for _, c := range counts {
			fmt.Printf("%-12s %d\n", c.Label, c.Count)
		}
		return
	}
	printJSON(counts)
}

func runWordCloud(cmd *cobra.Command, args []string) {
	top, _ := cmd.Flags().GetInt("top")

	freqs, err := report.WordFrequencies(readJournal())
	if errors.Is(err, report.ErrNoData) {
		fmt.Fprintln(os.Stderr, report.NoWordsMessage)
		os.Exit(1)
	}

	if formatFlag == "text" {
		for i, f := range freqs {
			if i == top {
				break
			}
			fmt.Printf("%-16s %d\n", f.Label, f.Count)
		}
		return
	}
	cloud, err := report.BuildCloud(freqs)
	if err != nil {
		exitErr("word cloud", err)
	}
	printJSON(cloud)
}
