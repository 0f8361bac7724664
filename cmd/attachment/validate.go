package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/ingest-attachment/internal/attachment"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition>",
	Short: "Compile a pipeline definition and print its processors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPipeline(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "pipeline [%s] is valid", p.ID())
		if p.Description() != "" {
			fmt.Fprintf(out, ": %s", p.Description())
		}
		fmt.Fprintln(out)
		for i, proc := range p.Processors() {
			fmt.Fprintf(out, "  %d. %s", i+1, proc.Type())
			if proc.Tag() != "" {
				fmt.Fprintf(out, " tag=%s", proc.Tag())
			}
			if a, ok := proc.(*attachment.Processor); ok {
				fmt.Fprintf(out, " source_field=%s target_field=%s indexed_chars=%d fields=%s",
					a.SourceField(), a.TargetField(), a.IndexedChars(), a.Fields())
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}
