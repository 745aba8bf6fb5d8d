package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PaperTsar/javasema/java/parser"
)

func newSymbolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbols <file.java>",
		Short: "Analyze one source file and list its declared symbols",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, ix, err := newAnalyzer()
			if err != nil {
				return err
			}
			if ix != nil {
				defer ix.Close()
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res := analyzer.AnalyzeSource(cmd.Context(), args[0], content)
			if res.Err != nil {
				return res.Err
			}

			res.Unit.Walk(func(n *parser.Node) bool {
				switch n.Kind {
				case parser.KindClassDecl, parser.KindInterfaceDecl,
					parser.KindEnumDecl, parser.KindAnnotationDecl,
					parser.KindMethodDecl, parser.KindConstructorDecl,
					parser.KindEnumConstant, parser.KindVarDeclarator,
					parser.KindTypeParameter:
					if sym, ok := res.Result.SymbolOf(n); ok {
						fmt.Printf("%d:%d\t%s\n", n.Span.Start.Line, n.Span.Start.Column, sym)
					}
				}
				return true
			})
			return nil
		},
	}
	return cmd
}
