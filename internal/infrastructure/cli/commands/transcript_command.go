package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/aside/internal/app"
)

// NewTranscriptCommand creates the transcript command with all subcommands.
func NewTranscriptCommand(container *app.Container) *cobra.Command {
	transcriptCmd := &cobra.Command{
		Use:   "transcript",
		Short: "Inspect the chat transcript",
	}

	transcriptCmd.AddCommand(
		newTranscriptListCommand(container),
		newTranscriptSearchCommand(container),
		newTranscriptClearCommand(container),
		newTranscriptExportCommand(container),
	)

	return transcriptCmd
}

func newTranscriptListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent exchanges",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTranscript(cmd.OutOrStdout(), container, limit, "")
		},
	}

	cmd.Flags().IntVar(&limit, "limit", DefaultTranscriptLimit, "Max exchanges to show")
	return cmd
}

func newTranscriptSearchCommand(container *app.Container) *cobra.Command {
	var query string
	var limit int

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the transcript for a keyword",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return fmt.Errorf(ErrQueryRequired)
			}
			return listTranscript(cmd.OutOrStdout(), container, limit, query)
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Search keyword")
	cmd.Flags().IntVar(&limit, "limit", DefaultTranscriptLimit, "Limit search results")
	return cmd
}

func newTranscriptClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Transcript == nil {
				return fmt.Errorf(ErrTranscriptUnavailable)
			}
			if err := container.Transcript.Clear(); err != nil {
				return fmt.Errorf("failed to clear transcript: %w", err)
			}
			return nil
		},
	}
}

func newTranscriptExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export the transcript to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Transcript == nil {
				return fmt.Errorf(ErrTranscriptUnavailable)
			}
			if err := container.Transcript.ExportJSON(args[0]); err != nil {
				return fmt.Errorf("failed to export transcript to %s: %w", args[0], err)
			}
			return nil
		},
	}
}

func listTranscript(out io.Writer, container *app.Container, limit int, search string) error {
	if container.Transcript == nil {
		return fmt.Errorf(ErrTranscriptUnavailable)
	}

	records, err := container.Transcript.Records(limit, search)
	if err != nil {
		return fmt.Errorf("failed to retrieve transcript: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoTranscript)
		return nil
	}

	for _, rec := range records {
		status := "ok"
		if rec.Failed {
			status = "failed"
		}
		fmt.Fprintf(out, "%s | %s | %s | %s\n",
			rec.Timestamp.Format(TimestampFormat),
			rec.Model,
			status,
			firstLine(rec.Prompt))
	}
	return nil
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
