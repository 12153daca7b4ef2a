// Package cli wires the cobra command tree for the aside binary.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/aside/internal/app"
	"github.com/doeshing/aside/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	clipboard := NewClipboard()
	askCmd := commands.NewAskCommand(container, clipboard)

	root := &cobra.Command{
		Use:   "aside [prompt]",
		Short: "Aside - Azure OpenAI assistant in your sidebar",
		Long: "Aside resolves Azure OpenAI credentials through the Azure CLI and Key Vault\n" +
			"and answers coding questions in the terminal or over a local panel bridge.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			askCmd.SetArgs(args)
			return askCmd.ExecuteContext(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(askCmd)
	root.AddCommand(commands.NewServeCommand(container, clipboard))
	root.AddCommand(commands.NewDoctorCommand(container))
	root.AddCommand(commands.NewConfigCommand(container))
	root.AddCommand(commands.NewTranscriptCommand(container))
	root.AddCommand(commands.NewVersionCommand())
	return root, nil
}
