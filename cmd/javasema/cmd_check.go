package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/PaperTsar/javasema/java/sema"
)

var (
	errorTag = color.New(color.FgRed, color.Bold).SprintFunc()
	warnTag  = color.New(color.FgYellow, color.Bold).SprintFunc()
	infoTag  = color.New(color.FgCyan).SprintFunc()
)

func newCheckCmd() *cobra.Command {
	var showTimings bool
	var warningsAsErrors bool

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Analyze Java sources and report semantic findings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectJavaFiles(args)
			if err != nil {
				return err
			}

			analyzer, ix, err := newAnalyzer()
			if err != nil {
				return err
			}
			if ix != nil {
				defer ix.Close()
			}

			results, err := analyzer.AnalyzeAll(cmd.Context(), paths)
			if err != nil {
				return err
			}

			var errs, warns int
			for _, res := range results {
				if res.Err != nil {
					fmt.Fprintf(os.Stderr, "%s %v\n", errorTag("error:"), res.Err)
					errs++
					continue
				}
				for _, d := range res.Result.Diagnostics() {
					printDiagnostic(d)
					switch d.Severity {
					case sema.SeverityError:
						errs++
					case sema.SeverityWarning:
						warns++
					}
				}
				if showTimings {
					for _, st := range res.Result.Timings {
						fmt.Printf("%s: %-20s %s\n", res.Path, st.Stage, st.Duration)
					}
				}
			}

			fmt.Printf("%d files, %d errors, %d warnings\n", len(results), errs, warns)
			if errs > 0 || (warningsAsErrors && warns > 0) {
				return fmt.Errorf("check failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTimings, "timings", false, "print per-stage analysis timings")
	cmd.Flags().BoolVar(&warningsAsErrors, "strict", false, "treat warnings as errors")
	return cmd
}

func printDiagnostic(d sema.Diagnostic) {
	tag := infoTag
	switch d.Severity {
	case sema.SeverityError:
		tag = errorTag
	case sema.SeverityWarning:
		tag = warnTag
	}

	msg := d.Message
	if len(msg) > 80 {
		msg = "\n" + indent.String(wordwrap.String(msg, 76), 4)
	}
	fmt.Printf("%s: %s: %s\n", d.Pos, tag(d.Severity.String()), msg)
}
