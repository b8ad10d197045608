/*
Package errorx provides a structured, serializable and chainable error value.

An *Error carries an identity (name, code, message), context (metadata, HTTP status,
type, user-facing message, docs URL, source), a construction timestamp and a rendered
stack. Wrapping an *Error makes it the parent of the new one, so the whole chain can be
walked with Parent, Root and Chain, and survives a JSON round trip.

# Basic Usage

	err := errorx.NewWith(errorx.Options{
		Name:       "DatabaseError",
		Message:    "connection refused",
		HTTPStatus: 503,
		Metadata:   map[string]any{"host": "db-1"},
	})
	// err.Code() == "DATABASE_ERROR"

	wrapped := errorx.Wrap(err, errorx.Options{Name: "UserServiceError"})
	// wrapped.Parent() == err, wrapped.Root() == err

Any value can be converted with From. It never fails.

	e := errorx.From(recovered) // *Error, error, string, map, struct or nil

# Presets

A Factory builds errors of one category from a table of presets.
Defaults, the preset and the call-site overrides are merged in that order,
and Transform may rewrite the result.

	var DBErrors = &errorx.Factory{
		Defaults: errorx.Options{Name: "DBError", HTTPStatus: 500},
		Presets: map[errorx.PresetKey]errorx.Options{
			"TIMEOUT": {Code: "TIMEOUT", Message: "Query timed out"},
		},
		DefaultPreset: "TIMEOUT",
	}

	err := DBErrors.Create("TIMEOUT", errorx.Options{Metadata: map[string]any{"query": q}})

# Serialization

ToJSON and FromJSON convert between an *Error and the Serialized shape.
Parents are nested under "cause", and a cause that was not an *Error is kept as
a Snapshot under "original". Metadata is made JSON-safe with SafeValue:
cycles become "[Circular]" and functions or channels are dropped.

	b, _ := json.Marshal(err)
	restored, _ := errorx.Unmarshal(b)

# Context Integration

Request-scoped options can be stored in a context.Context and are applied by
Factory.CreateContext and NewContext.

	ctx = errorx.ContextWithOptions(ctx, errorx.Options{
		Metadata: map[string]any{"requestId": reqID},
	})
	return DBErrors.CreateContext(ctx, "TIMEOUT")
*/
package errorx
