package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shiwano/errorx"
)

func newInspectCommand() *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print a serialized error",
		Long: `Print a serialized error read from file, or from stdin when file is omitted or "-".

Formats:
  text  - name, code, metadata, stack and every ancestor (default)
  json  - the canonical serialized form, indented
  log   - the flat log entry`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			e, err := readError(c, args)
			if err != nil {
				return err
			}
			return inspect(c, e, format)
		},
	}
	c.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or log")
	return c
}

func inspect(c *cobra.Command, e *errorx.Error, format string) error {
	out := c.OutOrStdout()
	switch format {
	case "text":
		_, err := fmt.Fprintf(out, "%+v\n", e)
		return err
	case "json":
		return writeJSON(c, e.ToJSON())
	case "log":
		return writeJSON(c, e.ToLogEntry())
	}
	return errorx.DecodeErrors.Create(errorx.CodeUnsupportedFormat, errorx.Options{
		Message:  "unsupported output format: " + format,
		Metadata: map[string]any{"format": format},
	})
}

func writeJSON(c *cobra.Command, v any) error {
	enc := json.NewEncoder(c.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(errorx.SafeValue(v))
}
