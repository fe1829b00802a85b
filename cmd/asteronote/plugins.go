package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/asteronote/internal/plugin"
	"github.com/dshills/asteronote/internal/plugins"
)

// pluginInfo describes one plugin class.
type pluginInfo struct {
	Name         string   `json:"name" yaml:"name"`
	Actions      []string `json:"actions" yaml:"actions"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Script       bool     `json:"script,omitempty" yaml:"script,omitempty"`
}

// pluginReport is the output of the plugins command.
type pluginReport struct {
	Plugins   []pluginInfo `json:"plugins" yaml:"plugins"`
	LoadOrder []string     `json:"loadOrder" yaml:"loadOrder"`
}

func newPluginsCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List the plugin catalog and the configured load order",
		Long: `plugins lists every stock plugin class with the toolbar actions that select
it and its dependencies, followed by the Lua plugins named in the
configuration. The load order is the dependency order the configured
toolbar resolves to.`,
		Example: `  asteronote plugins
  asteronote plugins -c editor.yaml --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.setup(cmd)
			if err != nil {
				return err
			}
			classes, err := pluginClasses(cfg, log)
			if err != nil {
				return err
			}
			report, err := buildPluginReport(classes)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), format, report, func(w io.Writer) error {
				return pluginTable(w, report)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table/json/yaml)")
	return cmd
}

// buildPluginReport lists the catalog plus any configured classes missing
// from it, and resolves the load order of configured.
func buildPluginReport(configured []plugin.Class) (*pluginReport, error) {
	reg := plugin.NewRegistry()
	byName := make(map[string]*pluginInfo)
	var names []string
	add := func(c plugin.Class, action string, script bool) error {
		info, ok := byName[c.Name]
		if !ok {
			if err := reg.Register(c); err != nil {
				return err
			}
			info = &pluginInfo{Name: c.Name, Dependencies: c.Dependencies, Script: script}
			byName[c.Name] = info
			names = append(names, c.Name)
		}
		if action != "" && !slices.Contains(info.Actions, action) {
			info.Actions = append(info.Actions, action)
		}
		return nil
	}

	catalog := plugins.Catalog()
	for _, action := range plugins.Actions() {
		if err := add(catalog[action], action, false); err != nil {
			return nil, err
		}
	}
	var order []string
	for _, c := range configured {
		if _, stock := byName[c.Name]; !stock {
			if err := add(c, "", true); err != nil {
				return nil, err
			}
		}
		if !slices.Contains(order, c.Name) {
			order = append(order, c.Name)
		}
	}

	resolved, err := reg.ResolveLoadOrder(order)
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	report := &pluginReport{LoadOrder: resolved}
	for _, name := range names {
		info := byName[name]
		slices.Sort(info.Actions)
		report.Plugins = append(report.Plugins, *info)
	}
	return report, nil
}

func pluginTable(w io.Writer, r *pluginReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "NAME\tACTIONS\tDEPENDENCIES\tSOURCE")
	for _, p := range r.Plugins {
		source := "stock"
		if p.Script {
			source = "lua"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, dashIfEmpty(p.Actions), dashIfEmpty(p.Dependencies), source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nLoad order: %s\n", strings.Join(r.LoadOrder, " -> "))
	return err
}

func dashIfEmpty(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ",")
}

// writeReport encodes v as JSON or YAML, or calls table.
func writeReport(w io.Writer, format string, v any, table func(io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		return table(w)
	}
	return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
}
