package dberr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shiwano/errorx"
	"github.com/shiwano/errorx/presets/dberr"
)

func TestNew(t *testing.T) {
	t.Run("merges defaults, preset and overrides", func(t *testing.T) {
		err := dberr.New(dberr.Timeout, errorx.Options{Message: "Custom"})

		require.Equal(t, "Custom", err.Message())
		require.Equal(t, "DB_TIMEOUT", err.Code())
		require.Equal(t, 504, err.HTTPStatus())
		require.Equal(t, "DatabaseError", err.Name())
		require.Equal(t, "database", err.Type())
	})

	t.Run("keeps the default status when the preset sets none", func(t *testing.T) {
		err := dberr.New(dberr.QueryFailed)

		require.Equal(t, 500, err.HTTPStatus())
		require.Equal(t, "DB_QUERY_FAILED", err.Code())
	})

	t.Run("unknown key falls back to the default preset", func(t *testing.T) {
		err := dberr.New("NO_SUCH_PRESET")

		require.Equal(t, "DB_QUERY_FAILED", err.Code())
		require.Equal(t, "Database query failed", err.Message())
	})
}

func TestQuery(t *testing.T) {
	cause := errors.New("syntax error at or near \"SELEC\"")
	err := dberr.Query(cause, "SELEC 1")

	require.ErrorIs(t, err, cause)
	require.Equal(t, "DB_QUERY_FAILED", err.Code())
	v, ok := err.MetadataValue("query")
	require.True(t, ok)
	require.Equal(t, "SELEC 1", v)
}

func TestWrap(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := dberr.Wrap(cause, dberr.UniqueViolation)

	require.Equal(t, 409, err.HTTPStatus())
	require.True(t, dberr.Factory.Is(err, dberr.UniqueViolation))
	require.True(t, errorx.HasCode(errorx.Wrap(err, errorx.Options{}), "DB_UNIQUE_VIOLATION"))
}
