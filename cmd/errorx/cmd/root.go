// Package cmd implements the errorx command line tool.
package cmd

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shiwano/errorx"
	zerologhelper "github.com/shiwano/errorx/integrations/zerolog"
)

// Execute runs the root command with the process streams.
func Execute() error {
	root := NewRootCommand()
	root.SetIn(os.Stdin)
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	return run(root)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "errorx",
		Short: "Inspect, fingerprint and resolve serialized errors",
		Long: `errorx reads errors serialized with errorx (JSON objects) from a file
or stdin and prints them in a human or machine readable form.

Commands:
  inspect      - print the error, its chain and its metadata
  fingerprint  - print the grouping fingerprint of the error
  resolve      - print the user-facing presentation of the error`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "log failures as structured records")

	root.AddCommand(
		newInspectCommand(),
		newFingerprintCommand(),
		newResolveCommand(),
	)
	return root
}

func run(root *cobra.Command) error {
	c, err := root.ExecuteC()
	if err != nil {
		verbose, _ := root.PersistentFlags().GetBool("verbose")
		reportError(c.ErrOrStderr(), err, verbose)
	}
	return err
}

func reportError(w io.Writer, err error, verbose bool) {
	if !verbose {
		_, _ = io.WriteString(w, "errorx: "+err.Error()+"\n")
		return
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	logger.Error().Object("error", zerologhelper.Error(err)).Msg("command failed")
}

// readInput reads args[0], or stdin when no file or "-" is given.
func readInput(c *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(c.InOrStdin())
		if err != nil {
			return nil, errorx.DecodeErrors.Wrap(err, errorx.CodeDecodeFailure, errorx.Options{Message: "failed to read stdin"})
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, errorx.DecodeErrors.Wrap(err, errorx.CodeDecodeFailure, errorx.Options{
			Message:  "failed to read input",
			Metadata: map[string]any{"path": args[0]},
		})
	}
	return data, nil
}

// readError decodes the serialized error in the input.
func readError(c *cobra.Command, args []string) (*errorx.Error, error) {
	data, err := readInput(c, args)
	if err != nil {
		return nil, err
	}
	return errorx.Unmarshal(data)
}
