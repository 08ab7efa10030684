package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/mindvault/internal/model"
	"github.com/rcliao/mindvault/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import entries from JSON",
		Long: "Import entries from JSON on stdin, in the format produced by export. " +
			"Each entry is embedded again with the configured embedder, keeps its " +
			"timestamp and emotion, and is appended to the journal.",
		RunE: runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	var entries []model.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()
	j := openJournal()

	imported := 0
	for _, e := range entries {
		if strings.TrimSpace(e.Text) == "" {
			continue
		}
		emotion := e.Emotion
		if emotion == "" {
			emotion = model.FallbackEmotion
		}
		added, err := s.Add(cmd.Context(), store.AddParams{Text: e.Text, Emotion: emotion, At: e.Timestamp})
		if err != nil {
			return fmt.Errorf("import after %d entries: %w", imported, err)
		}
		if err := j.Append(*added); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		imported++
	}

	fmt.Printf(`{"ok":true,"imported":%d}`+"\n", imported)
	return nil
}
