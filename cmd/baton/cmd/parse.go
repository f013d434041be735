package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baton-ai/baton/internal/intent"
)

var parseCmd = &cobra.Command{
	Use:   "parse <text>...",
	Short: "Parse a verbal command into a structured intent",
	Long: `Run the verbal command parser against a piece of text.

Recognized intents are agent handoffs ("hand off to reviewer") and flow
control ("pause workflow", "skip to summarize"). Unrecognized text is
not an error; it simply carries no intent.

Examples:
  baton parse hand off to security-reviewer
  baton parse "skip to summarize"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	parsed := intent.Parse(text)
	if parsed == nil {
		fmt.Println("No intent recognized.")
		return nil
	}
	return printJSON(parsed)
}
