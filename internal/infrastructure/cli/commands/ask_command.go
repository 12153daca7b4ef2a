package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/aside/internal/app"
	"github.com/doeshing/aside/internal/domain"
	"github.com/doeshing/aside/internal/ports"
)

// NewAskCommand creates the one-shot ask command.
func NewAskCommand(container *app.Container, clipboard ports.Clipboard) *cobra.Command {
	var (
		selection     string
		selectionFile string
		copyAnswer    bool
		showResolve   bool
		timeout       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Ask a one-shot question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			if selectionFile != "" {
				data, err := os.ReadFile(selectionFile)
				if err != nil {
					return fmt.Errorf("failed to read selection file: %w", err)
				}
				selection = string(data)
			}

			res, err := container.Session.Connect(ctx)
			if showResolve || !res.Outcome.IsLoaded || res.Outcome.HasError {
				fmt.Fprintln(cmd.OutOrStdout(), res.Outcome.Summary())
			}
			if err != nil {
				return err
			}
			if !res.Outcome.IsLoaded {
				return fmt.Errorf("credential resolution did not complete")
			}

			answer, err := container.Session.RunChat(domain.ChatRequest{
				Context:   ctx,
				Prompt:    strings.Join(args, " "),
				Selection: selection,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), answer)

			if copyAnswer && clipboard != nil && clipboard.Enabled() {
				if err := clipboard.Copy(answer); err != nil {
					container.Logger.Warn("clipboard copy failed", map[string]interface{}{"error": err.Error()})
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&selection, "selection", "s", "", "Code selection to attach to the prompt")
	cmd.Flags().StringVar(&selectionFile, "selection-file", "", "Read the code selection from a file")
	cmd.Flags().BoolVarP(&copyAnswer, "copy", "c", false, "Copy the answer to the clipboard")
	cmd.Flags().BoolVar(&showResolve, "show-resolution", false, "Print the credential resolution report")
	cmd.Flags().DurationVar(&timeout, "timeout", 120*time.Second, "Overall request timeout")

	return cmd
}
