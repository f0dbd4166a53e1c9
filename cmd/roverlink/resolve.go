package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rover-control/roverlink/internal/command"
	"github.com/rover-control/roverlink/internal/mode"
	"github.com/rover-control/roverlink/internal/schema"
	"github.com/rover-control/roverlink/internal/script"
)

// newResolveCmd builds the one-shot resolution subcommand: validate a single
// command from flags and print its canonical envelope to stdout.
func newResolveCmd() *cobra.Command {
	var (
		kindFlag   string
		modeFlag   string
		continuing bool
		fieldFlags []string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one command and print its canonical envelope",
		Long: `Resolve validates a single command against the schema registry, the
transmission mode policy, and (for scripts) the hardware script contract,
then prints the canonical JSON envelope to stdout.

Field values are passed as repeated --field name=value flags. For script
commands, an action field of "-" reads the script body from stdin.`,
		Example: `  roverlink resolve --type read_file --field file_name=status.log
  cat drive.py | roverlink resolve --type basic_action --mode one_way --field action=-`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := parseFieldFlags(fieldFlags)
			if err != nil {
				return err
			}
			return runResolve(cmd, kindFlag, modeFlag, continuing, fields)
		},
	}

	cmd.Flags().StringVar(&kindFlag, "type", "", "command type (bash_command, edit_file, basic_action, read_file, read_image)")
	cmd.Flags().StringVar(&modeFlag, "mode", string(mode.ModeInteractive), "transmission mode (interactive, one_way)")
	cmd.Flags().BoolVar(&continuing, "continuing", false, "script keeps the controller alive for a follow-up command")
	cmd.Flags().StringArrayVar(&fieldFlags, "field", nil, "field as name=value (repeatable)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runResolve(cmd *cobra.Command, kindFlag, modeFlag string, continuing bool, fields map[string]string) error {
	requestMode, err := mode.Parse(modeFlag)
	if err != nil {
		return err
	}

	if body, ok := fields[schema.FieldAction]; ok && body == "-" {
		stdin, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read script from stdin: %w", err)
		}
		fields[schema.FieldAction] = string(stdin)
	}

	resolver := command.NewResolver(mode.DefaultPolicy(), script.DefaultContract())
	result, err := resolver.Resolve(context.Background(), command.Request{
		Kind:       schema.Kind(kindFlag),
		Fields:     fields,
		Mode:       requestMode,
		Continuing: continuing,
	})
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", warning)
	}

	canonical, err := result.Envelope.Serialize()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(canonical))
	return nil
}

// parseFieldFlags turns repeated name=value flags into a field map.
func parseFieldFlags(raw []string) (map[string]string, error) {
	fields := make(map[string]string, len(raw))
	for _, pair := range raw {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --field %q: expected name=value", pair)
		}
		if _, dup := fields[name]; dup {
			return nil, fmt.Errorf("duplicate --field %q", name)
		}
		fields[name] = value
	}
	return fields, nil
}
