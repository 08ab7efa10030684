package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send one message and print the reply",
		Long: "Send one message. It is classified, stored, journaled and answered. " +
			"Message can be a positional arg or piped via stdin. Slash commands " +
			"(/coach, /cheer, /listener) switch the persona.",
		RunE: runChat,
	}

	cmd.Flags().StringP("persona", "p", "", "Persona for this message: Listener, Coach or Cheerleader")
	cmd.Flags().StringP("session", "s", "cli", "Session ID for the persona; it persists between calls only with the redis session backend")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetString("persona")
	session, _ := cmd.Flags().GetString("session")

	var message string
	if len(args) > 0 {
		message = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			message = string(b)
		}
	}

	if strings.TrimSpace(message) == "" {
		return errors.New("message is required (positional arg or stdin)")
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer a.Close()

	reply, err := a.chat.Respond(cmd.Context(), session, strings.TrimSpace(message), mode)
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}

	if formatFlag == "text" {
		fmt.Printf("MindVault: %s\n", reply.Text)
		return nil
	}
	printJSON(reply)
	return nil
}
