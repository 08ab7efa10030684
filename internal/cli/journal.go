package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect or rebuild the text journal",
	}

	rebuild := &cobra.Command{
		Use:   "rebuild",
		Short: "Regenerate the journal from the memory store",
		Long:  "Rewrite the journal file with one line per stored entry, oldest first. The old file is replaced atomically.",
		RunE:  runJournalRebuild,
	}

	show := &cobra.Command{
		Use:         "show",
		Short:       "Print the journal",
		Annotations: map[string]string{noModels: "true"},
		Run:         runJournalShow,
	}

	cmd.AddCommand(rebuild, show)
	RootCmd.AddCommand(cmd)
}

func runJournalRebuild(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd.Context())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	entries, err := s.All(cmd.Context())
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}
	j := openJournal()
	if err := j.Rebuild(entries); err != nil {
		return fmt.Errorf("rebuild journal: %w", err)
	}

	fmt.Printf(`{"ok":true,"lines":%d,"path":%q}`+"\n", len(entries), j.Path())
	return nil
}

func runJournalShow(cmd *cobra.Command, args []string) {
	for _, line := range readJournal() {
		fmt.Println(line)
	}
}
