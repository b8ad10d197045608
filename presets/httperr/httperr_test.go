package httperr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shiwano/errorx"
	"github.com/shiwano/errorx/presets/httperr"
)

func TestNew(t *testing.T) {
	t.Run("uses the status preset", func(t *testing.T) {
		err := httperr.New(404)

		require.Equal(t, "HTTPError", err.Name())
		require.Equal(t, "HTTP_NOT_FOUND", err.Code())
		require.Equal(t, "Not Found", err.Message())
		require.Equal(t, 404, err.HTTPStatus())
		require.Equal(t, "http", err.Type())
		require.NotEmpty(t, err.UIMessage())
	})

	t.Run("overrides win over the preset", func(t *testing.T) {
		err := httperr.New(404, errorx.Options{
			Message:  "user not found",
			Metadata: map[string]any{"userId": "u1"},
		})

		require.Equal(t, "user not found", err.Message())
		require.Equal(t, "HTTP_NOT_FOUND", err.Code())
		require.Equal(t, map[string]any{"userId": "u1"}, err.Metadata())
	})

	t.Run("does not prefix twice", func(t *testing.T) {
		err := httperr.New(400, errorx.Options{Code: "HTTP_CUSTOM"})

		require.Equal(t, "HTTP_CUSTOM", err.Code())
	})

	t.Run("unknown status falls back to 500", func(t *testing.T) {
		err := httperr.New(418)

		require.Equal(t, "HTTP_INTERNAL_SERVER_ERROR", err.Code())
		require.Equal(t, 500, err.HTTPStatus())
	})

	t.Run("empty key selects the default preset", func(t *testing.T) {
		err := httperr.Factory.CreateWith(errorx.Options{Message: "boom"})

		require.Equal(t, "boom", err.Message())
		require.Equal(t, 500, err.HTTPStatus())
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("upstream closed")
	err := httperr.Wrap(cause, 502)

	require.ErrorIs(t, err, cause)
	require.Equal(t, "HTTP_BAD_GATEWAY", err.Code())
	require.Equal(t, "upstream closed", err.Original().Message)
}

func TestStatus(t *testing.T) {
	require.Equal(t, 429, httperr.Status(httperr.New(429)))
	require.Equal(t, 500, httperr.Status(errors.New("plain")))
	require.True(t, httperr.Factory.Is(httperr.New(409), errorx.IntKey(409)))
	require.False(t, httperr.Factory.Is(httperr.New(409), errorx.IntKey(404)))
}
