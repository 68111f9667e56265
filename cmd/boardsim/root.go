//go:build !rp2040

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"boardcore-go/internal/platform/boards"
	"boardcore-go/types"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	Board string // YAML overrides on top of the built-in sim board
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "boardsim",
		Short:         "Run the board core on the host",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.Board, "board", "b", "", "board YAML file")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newDescribeCommand(opts))
	return cmd
}

// loadBoard overlays the YAML file at path (if any) on the built-in board,
// then normalises and validates the result.
func loadBoard(path string) (types.BoardConfig, error) {
	cfg := boards.Selected
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read board: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse board %s: %w", path, err)
		}
	}
	cfg = boards.Normalize(cfg)
	if err := boards.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newDescribeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the normalised board descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadBoard(opts.Board)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}
