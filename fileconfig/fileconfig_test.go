package fileconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shiwano/errorx"
	"github.com/shiwano/errorx/fileconfig"
	"github.com/shiwano/errorx/resolver"
)

const yamlDoc = `
config:
  source: billing-api
  docsBaseUrl: https://docs.example.com
  docsMap:
    PAY_DECLINED: /payments#declined
resolver:
  defaults:
    namespace: billing
    uiMessage: Something went wrong.
  configs:
    payment:
      uiMessage: Payment problem.
      presets:
        PAY_DECLINED:
          uiMessage: Your card was declined.
presets:
  payment:
    defaults:
      name: PaymentError
      type: payment
      httpStatus: 402
      metadata:
        provider: stripe
    defaultPreset: DECLINED
    codePrefix: PAY_
    presets:
      DECLINED:
        code: DECLINED
        message: Card declined
      EXPIRED:
        code: EXPIRED
        message: Card expired
`

const tomlDoc = `
[config]
source = "billing-api"

[resolver.defaults]
namespace = "billing"

[resolver.configs.payment]
uiMessage = "Payment problem."

[resolver.configs.payment.presets.PAY_DECLINED]
uiMessage = "Your card was declined."

[presets.payment]
defaultPreset = "DECLINED"
codePrefix = "PAY_"

[presets.payment.defaults]
name = "PaymentError"
type = "payment"
httpStatus = 402

[presets.payment.presets.DECLINED]
code = "DECLINED"
message = "Card declined"
`

const jsonDoc = `{
  "config": {"source": "billing-api"},
  "resolver": {"defaults": {"namespace": "billing"}},
  "presets": {
    "payment": {
      "defaults": {"name": "PaymentError", "type": "payment", "httpStatus": 402},
      "defaultPreset": "DECLINED",
      "codePrefix": "PAY_",
      "presets": {"DECLINED": {"code": "DECLINED", "message": "Card declined"}}
    }
  }
}`

func TestDecode(t *testing.T) {
	for _, tc := range []struct {
		name   string
		doc    string
		format fileconfig.Format
	}{
		{"yaml", yamlDoc, fileconfig.FormatYAML},
		{"toml", tomlDoc, fileconfig.FormatTOML},
		{"json", jsonDoc, fileconfig.FormatJSON},
	} {
		t.Run(tc.name, func(t *testing.T) {
			file, err := fileconfig.Decode(strings.NewReader(tc.doc), tc.format)
			require.NoError(t, err)

			require.Equal(t, "billing-api", file.Config.Source)
			require.Equal(t, "billing", file.Resolver.Defaults.Namespace)

			factory := file.Factories()["payment"]
			require.NotNil(t, factory)

			e := factory.Create("DECLINED")
			require.Equal(t, "PAY_DECLINED", e.Code())
			require.Equal(t, "Card declined", e.Message())
			require.Equal(t, 402, e.HTTPStatus())
			require.Equal(t, "PaymentError", e.Name())
		})
	}
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, err := fileconfig.Decode(strings.NewReader("{}"), fileconfig.FormatAuto)
	require.Error(t, err)

	var e *errorx.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, errorx.CodeUnsupportedFormat, e.Code())
}

func TestDecode_Malformed(t *testing.T) {
	_, err := fileconfig.Decode(strings.NewReader("config: [unclosed"), fileconfig.FormatYAML)
	require.Error(t, err)
	require.True(t, errorx.HasCode(err, errorx.CodeDecodeFailure))
}

func TestLoadResolverConfig(t *testing.T) {
	opts, err := fileconfig.LoadResolverConfig(strings.NewReader(yamlDoc), fileconfig.FormatYAML)
	require.NoError(t, err)

	file, err := fileconfig.LoadPresets(strings.NewReader(yamlDoc), fileconfig.FormatYAML)
	require.NoError(t, err)

	r := resolver.New(opts)
	e := file["payment"].Create("DECLINED")

	got := r.Resolve(e)
	require.Equal(t, "payment", got.Type)
	require.Equal(t, "Your card was declined.", got.UIMessage)
	require.Equal(t, "billing.PAY_DECLINED", got.I18nKey)
}

func TestLoadPresets_MetadataDefaults(t *testing.T) {
	factories, err := fileconfig.LoadPresets(strings.NewReader(yamlDoc), fileconfig.FormatYAML)
	require.NoError(t, err)

	e := factories["payment"].Create("EXPIRED", errorx.Options{Metadata: map[string]any{"orderId": "o-1"}})
	require.Equal(t, map[string]any{"provider": "stripe", "orderId": "o-1"}, e.Metadata())
}

func TestLoad(t *testing.T) {
	t.Run("detects format from extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "errors.toml")
		require.NoError(t, os.WriteFile(path, []byte(tomlDoc), 0o600))

		file, err := fileconfig.Load(path)
		require.NoError(t, err)
		require.Equal(t, "billing-api", file.Config.Source)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := fileconfig.Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("records the path on parse errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

		_, err := fileconfig.Load(path)
		var e *errorx.Error
		require.True(t, errors.As(err, &e))
		v, ok := e.MetadataValue("path")
		require.True(t, ok)
		require.Equal(t, path, v)
	})
}

func TestFile_Apply(t *testing.T) {
	t.Cleanup(errorx.ResetConfig)

	file, err := fileconfig.Decode(strings.NewReader(yamlDoc), fileconfig.FormatYAML)
	require.NoError(t, err)
	file.Apply()

	e := file.Factories()["payment"].Create("DECLINED")
	require.Equal(t, "billing-api", e.Source())
	require.Equal(t, "https://docs.example.com/payments#declined", e.DocsURL())
}

func TestFormatFromPath(t *testing.T) {
	require.Equal(t, fileconfig.FormatYAML, fileconfig.FormatFromPath("a.yml"))
	require.Equal(t, fileconfig.FormatYAML, fileconfig.FormatFromPath("a.YAML"))
	require.Equal(t, fileconfig.FormatTOML, fileconfig.FormatFromPath("a.toml"))
	require.Equal(t, fileconfig.FormatJSON, fileconfig.FormatFromPath("a.json"))
	require.Equal(t, fileconfig.FormatAuto, fileconfig.FormatFromPath("a.txt"))
}
