package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hal9000y/email-assistant/internal/email"
	"github.com/hal9000y/email-assistant/internal/format"
)

const (
	schemaInternal = "internal"
	schemaGmail    = "gmail"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render emails and tool calls as markdown",
		Long: `Render an email record or an agent tool call as markdown. Input is YAML or
JSON read from the given file, or from stdin when no file is given.`,
	}

	cmd.AddCommand(newRenderEmailCmd(), newRenderToolCallCmd())

	return cmd
}

func newRenderEmailCmd() *cobra.Command {
	var schema string

	cmd := &cobra.Command{
		Use:   "email [file]",
		Short: "Render an email record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			record := map[string]string{}
			if err := decodeInput(cmd, args, &record); err != nil {
				return err
			}

			parser := email.NewParser(logger)

			var rec email.Record
			switch schema {
			case schemaInternal:
				rec, err = parser.ParseInternal(record)
			case schemaGmail:
				rec, err = parser.ParseGmail(record)
			default:
				return fmt.Errorf("unknown schema %q", schema)
			}
			if err != nil {
				return err
			}

			_, err = io.WriteString(cmd.OutOrStdout(), format.EmailMarkdown(rec.Subject, rec.Author, rec.To, rec.Thread, rec.ID))
			return err
		},
	}

	cmd.Flags().StringVar(&schema, "schema", schemaInternal, "Record schema: internal or gmail")

	return cmd
}

func newRenderToolCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tool-call [file]",
		Short: "Render an agent tool call",
		Long: `Render a tool call given as a mapping with "name" and "args" keys.
Arguments the call lacks are rendered as ` + format.Placeholder + ` and reported on stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tc format.ToolCall
			if err := decodeInput(cmd, args, &tc); err != nil {
				return err
			}
			if tc.Name == "" {
				return fmt.Errorf("tool call has no name")
			}

			call := tc.Call()
			if missing := call.Missing(); len(missing) > 0 {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s call is missing %s\n", call.ToolName(), strings.Join(missing, ", "))
			}

			_, err := io.WriteString(cmd.OutOrStdout(), format.Render(call))
			return err
		},
	}
}

// decodeInput decodes the file named by args, or stdin, into v. YAML is a
// superset of JSON so both are accepted.
func decodeInput(cmd *cobra.Command, args []string, v any) error {
	r := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("os.Open failed: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	if err := yaml.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	return nil
}
