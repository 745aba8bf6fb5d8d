package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PaperTsar/javasema/java/parser"
)

func newDumpCmd() *cobra.Command {
	var format string
	var positions bool

	cmd := &cobra.Command{
		Use:   "dump <file.java>",
		Short: "Parse one source file and dump its tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			p := parser.ParseCompilationUnit(f, parser.WithFile(args[0]))
			unit := p.Finish()
			if unit == nil {
				return fmt.Errorf("%s: source does not parse", args[0])
			}

			switch format {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(unit)
			case "tree":
				if positions {
					fmt.Print(unit.StringWithPositions())
				} else {
					fmt.Print(unit.String())
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q (want json or tree)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "tree", "output format: tree or json")
	cmd.Flags().BoolVar(&positions, "positions", false, "include source positions in tree output")
	return cmd
}
