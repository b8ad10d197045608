package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shiwano/errorx"
	"github.com/shiwano/errorx/fileconfig"
	"github.com/shiwano/errorx/resolver"
)

type resolved struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	Type      string `json:"type,omitempty"`
	I18nKey   string `json:"i18nKey"`
	UIMessage string `json:"uiMessage,omitempty"`
	DocsURL   string `json:"docsUrl,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

func newResolveCommand() *cobra.Command {
	var configPath string

	c := &cobra.Command{
		Use:   "resolve [file]",
		Short: "Print the user-facing presentation of a serialized error",
		Long: `Print the user-facing presentation of a serialized error.

The resolver section of the --config file (YAML, TOML or JSON) selects
messages, i18n keys and documentation links.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var opts resolver.Options
			if configPath != "" {
				file, err := fileconfig.Load(configPath)
				if err != nil {
					return err
				}
				file.Apply()
				defer errorx.ResetConfig()
				opts = file.Resolver
			}

			e, err := readError(c, args)
			if err != nil {
				return err
			}

			r := resolver.NewWithTransform(opts, func(e *errorx.Error, rc resolver.Context) resolved {
				return resolved{
					Name:      e.Name(),
					Code:      rc.Code,
					Type:      rc.Type,
					I18nKey:   rc.I18nKey,
					UIMessage: rc.UIMessage,
					DocsURL:   rc.DocsURL,
					Extra:     rc.Config.Extra,
				}
			})
			return writeJSON(c, r.Resolve(e))
		},
	}
	c.Flags().StringVarP(&configPath, "config", "c", "", "config file with a resolver section")
	return c
}
