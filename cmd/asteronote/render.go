package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/asteronote/internal/config"
	"github.com/dshills/asteronote/internal/logging"
)

type renderFlags struct {
	script   string
	output   string
	markdown bool
	watch    bool
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Load content into an editor, apply a command script and print the markup",
		Long: `render mounts a headless editor configured from --config, loads the content
from file (stdin when omitted or "-"), applies the steps of --script and
writes the resulting markup. Markdown input is converted first.`,
		Example: `  # Bold a word and print the result
  printf 'select hello\nkey Ctrl+B\n' > bold.steps
  echo '<p>hello world</p>' | asteronote render --script bold.steps

  # Re-render whenever the configuration changes
  asteronote render -c editor.toml --watch -o out.html notes.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return runRender(cmd, g, f, input)
		},
	}
	cmd.Flags().StringVarP(&f.script, "script", "s", "", "command script to apply")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the markup to this file instead of stdout")
	cmd.Flags().BoolVarP(&f.markdown, "markdown", "m", false, "treat the input as Markdown")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "re-render when the configuration file changes")
	return cmd
}

func runRender(cmd *cobra.Command, g *globalFlags, f *renderFlags, input string) error {
	if f.watch && g.configPath == "" {
		return errors.New("--watch needs --config")
	}
	if f.watch && (input == "" || input == "-") {
		return errors.New("--watch cannot read content from stdin")
	}

	cfg, log, err := g.setup(cmd)
	if err != nil {
		return err
	}
	markup, err := loadMarkup(cmd, input, f.markdown)
	if err != nil {
		return err
	}
	var steps []step
	if f.script != "" {
		data, err := os.ReadFile(f.script)
		if err != nil {
			return fmt.Errorf("reading script: %w", err)
		}
		if steps, err = parseScript(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("%s: %w", f.script, err)
		}
	}

	if err := renderOnce(cmd, cfg, log, markup, steps, f.output); err != nil {
		return err
	}
	if !f.watch {
		return nil
	}

	log.Info("watching configuration", "path", g.configPath)
	return config.Watch(cmd.Context(), g.configPath, func(next *config.Config, err error) {
		if err != nil {
			return
		}
		if err := renderOnce(cmd, next, g.logger(cmd, next), markup, steps, f.output); err != nil {
			log.Error("re-render failed", err)
		}
	}, config.WithWatchLogger(log))
}

// renderOnce runs one editor session and writes its final content.
func renderOnce(cmd *cobra.Command, cfg *config.Config, log *logging.Logger, markup string, steps []step, output string) (err error) {
	s, err := newSession(cfg, log, markup)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); err == nil {
			err = cerr
		}
	}()
	if err := s.run(steps); err != nil {
		return err
	}
	return writeOutput(cmd, output, s.ed.Content()+"\n")
}

func writeOutput(cmd *cobra.Command, path, text string) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
