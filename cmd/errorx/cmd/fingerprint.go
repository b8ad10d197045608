package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shiwano/errorx/fingerprint"
)

func newFingerprintCommand() *cobra.Command {
	var (
		keys        []string
		noName      bool
		noCode      bool
		noMessage   bool
		useXXHash   bool
		printsParts bool
	)

	c := &cobra.Command{
		Use:   "fingerprint [file]",
		Short: "Print the grouping fingerprint of a serialized error",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			e, err := readError(c, args)
			if err != nil {
				return err
			}

			var opts []fingerprint.Option
			if noName {
				opts = append(opts, fingerprint.WithoutName())
			}
			if noCode {
				opts = append(opts, fingerprint.WithoutCode())
			}
			if noMessage {
				opts = append(opts, fingerprint.WithoutMessage())
			}
			if len(keys) > 0 {
				opts = append(opts, fingerprint.WithMetadataKeys(keys...))
			}
			if useXXHash {
				opts = append(opts, fingerprint.WithHash(fingerprint.XXHash))
			}

			out := c.OutOrStdout()
			if printsParts {
				for _, p := range fingerprint.Parts(e, opts...) {
					if _, err := fmt.Fprintln(out, p); err != nil {
						return err
					}
				}
			}
			_, err = fmt.Fprintln(out, fingerprint.Generate(e, opts...))
			return err
		},
	}
	c.Flags().StringSliceVarP(&keys, "keys", "k", nil, "metadata keys to include")
	c.Flags().BoolVar(&noName, "no-name", false, "exclude the name")
	c.Flags().BoolVar(&noCode, "no-code", false, "exclude the code")
	c.Flags().BoolVar(&noMessage, "no-message", false, "exclude the message")
	c.Flags().BoolVar(&useXXHash, "xxhash", false, "hash with xxhash instead of the default hash")
	c.Flags().BoolVar(&printsParts, "parts", false, "print the hashed parts before the fingerprint")
	return c
}
