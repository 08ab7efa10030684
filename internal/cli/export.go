package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/mindvault/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries as JSON",
		Long:  "Export every stored entry, oldest first, as a JSON array. Vectors are left out; import re-embeds.",
		RunE:  runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd.Context())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	entries, err := s.All(cmd.Context())
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if entries == nil {
		entries = []model.Entry{}
	}

	printJSON(entries)
	return nil
}
