package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/asteronote/internal/content"
)

func newStatsCmd(g *globalFlags) *cobra.Command {
	var (
		format   string
		markdown bool
	)
	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Count the characters, words and lines of the content",
		Long: `stats loads content the way render does, passes it through the editor so
the counts reflect what the editor would hold, and prints plain-text
statistics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			cfg, log, err := g.setup(cmd)
			if err != nil {
				return err
			}
			markup, err := loadMarkup(cmd, input, markdown)
			if err != nil {
				return err
			}
			s, err := newSession(cfg, log, markup)
			if err != nil {
				return err
			}
			st := content.Analyze(s.ed.Content())
			if err := s.close(); err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), format, st, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "characters: %d\nnon-space:  %d\nwords:      %d\nlines:      %d\n",
					st.Characters, st.NonSpace, st.Words, st.Lines)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table/json/yaml)")
	cmd.Flags().BoolVarP(&markdown, "markdown", "m", false, "treat the input as Markdown")
	return cmd
}
