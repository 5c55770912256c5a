package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hal9000y/email-assistant/internal/tool"
)

type toolsOptions struct {
	namespaces []string
	extended   bool
	strict     bool
	output     string
}

type toolEntry struct {
	Name        string `yaml:"name"`
	Namespace   string `yaml:"namespace"`
	Kind        string `yaml:"kind"`
	Description string `yaml:"description"`
}

func newToolsCmd() *cobra.Command {
	opts := toolsOptions{}

	cmd := &cobra.Command{
		Use:   "tools [names...]",
		Short: "List the tools an agent may call",
		Long: `List the registered tools. Without names every tool of the selected
namespaces is listed. Unknown names are skipped unless --strict is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTools(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.namespaces, "namespace", nil, "Extension tool namespaces to include")
	f.BoolVar(&opts.extended, "extended", false, "Include every extension namespace")
	f.BoolVar(&opts.strict, "strict", false, "Fail on an unknown tool name")
	f.StringVarP(&opts.output, "output", "o", "text", "Output format: text or yaml")

	return cmd
}

func runTools(cmd *cobra.Command, args []string, opts toolsOptions) error {
	logger, err := newLogger(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	reg, err := newRegistry(nil, nil, logger)
	if err != nil {
		return err
	}

	namespaces := opts.namespaces
	if opts.extended {
		namespaces = reg.Extended()
	}

	var names []string
	if len(args) > 0 {
		names = args
	}

	tools := reg.List(names, namespaces...)
	if opts.strict && names != nil {
		if tools, err = reg.Require(names, namespaces...); err != nil {
			return err
		}
	}

	return writeTools(cmd.OutOrStdout(), tools, opts.output)
}

func writeTools(w io.Writer, tools []tool.Tool, output string) error {
	entries := make([]toolEntry, 0, len(tools))
	for _, t := range tools {
		entries = append(entries, toolEntry{Name: t.Name, Namespace: t.Namespace, Kind: string(t.Kind), Description: t.Description})
	}

	switch output {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("yaml.Encode failed: %w", err)
		}
		return enc.Close()
	case "text":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, e := range entries {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Namespace, e.Kind, e.Description)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}
