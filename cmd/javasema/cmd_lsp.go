package main

import (
	"github.com/spf13/cobra"

	"github.com/PaperTsar/javasema/workspace"
)

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Serve semantic diagnostics over the language server protocol on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, ix, err := newTypeSystem()
			if err != nil {
				return err
			}
			if ix != nil {
				defer ix.Close()
			}
			return workspace.NewLSPServer(version, ts, nil).RunStdio()
		},
	}
}
