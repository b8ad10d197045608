// Package dberr provides a preset factory for database errors.
package dberr

import (
	"strings"

	"github.com/shiwano/errorx"
)

const (
	// Name is the name of every database error.
	Name = "DatabaseError"
	// Type is the type of every database error.
	Type = "database"
	// CodePrefix is prepended to every code.
	CodePrefix = "DB_"
)

// Preset keys.
const (
	ConnectionFailed    errorx.PresetKey = "CONNECTION_FAILED"
	ConnectionTimeout   errorx.PresetKey = "CONNECTION_TIMEOUT"
	QueryFailed         errorx.PresetKey = "QUERY_FAILED"
	Timeout             errorx.PresetKey = "TIMEOUT"
	UniqueViolation     errorx.PresetKey = "UNIQUE_VIOLATION"
	ForeignKeyViolation errorx.PresetKey = "FOREIGN_KEY_VIOLATION"
	NotNullViolation    errorx.PresetKey = "NOT_NULL_VIOLATION"
	NotFound            errorx.PresetKey = "NOT_FOUND"
	Deadlock            errorx.PresetKey = "DEADLOCK"
	TransactionFailed   errorx.PresetKey = "TRANSACTION_FAILED"
)

// Factory creates database errors. Unknown keys fall back to QueryFailed.
var Factory = &errorx.Factory{
	Defaults: errorx.Options{Name: Name, Type: Type, HTTPStatus: 500},
	Presets: map[errorx.PresetKey]errorx.Options{
		ConnectionFailed: {
			Code:       string(ConnectionFailed),
			Message:    "Failed to connect to database",
			UIMessage:  "Unable to connect to the database. Please try again later.",
			HTTPStatus: 503,
		},
		ConnectionTimeout: {
			Code:       string(ConnectionTimeout),
			Message:    "Database connection timed out",
			UIMessage:  "The database took too long to respond. Please try again.",
			HTTPStatus: 504,
		},
		QueryFailed: {
			Code:      string(QueryFailed),
			Message:   "Database query failed",
			UIMessage: "A database error occurred. Please try again.",
		},
		Timeout: {
			Code:       string(Timeout),
			Message:    "Database query timed out",
			UIMessage:  "The operation took too long. Please try again.",
			HTTPStatus: 504,
		},
		UniqueViolation: {
			Code:       string(UniqueViolation),
			Message:    "Unique constraint violation",
			UIMessage:  "This record already exists.",
			HTTPStatus: 409,
		},
		ForeignKeyViolation: {
			Code:       string(ForeignKeyViolation),
			Message:    "Foreign key constraint violation",
			UIMessage:  "This operation references a record that does not exist.",
			HTTPStatus: 409,
		},
		NotNullViolation: {
			Code:       string(NotNullViolation),
			Message:    "Not null constraint violation",
			UIMessage:  "A required field is missing.",
			HTTPStatus: 400,
		},
		NotFound: {
			Code:       string(NotFound),
			Message:    "Record not found",
			UIMessage:  "The requested record was not found.",
			HTTPStatus: 404,
		},
		Deadlock: {
			Code:       string(Deadlock),
			Message:    "Deadlock detected",
			UIMessage:  "The operation conflicted with another. Please try again.",
			HTTPStatus: 409,
		},
		TransactionFailed: {
			Code:      string(TransactionFailed),
			Message:   "Transaction failed",
			UIMessage: "The operation could not be completed. Please try again.",
		},
	},
	DefaultPreset: QueryFailed,
	Transform:     prefixCode,
}

// New creates the error for key with overrides.
func New(key errorx.PresetKey, overrides ...errorx.Options) *errorx.Error {
	return Factory.Create(key, overrides...)
}

// Wrap creates the error for key wrapping a driver error.
func Wrap(cause error, key errorx.PresetKey, overrides ...errorx.Options) *errorx.Error {
	return Factory.Wrap(cause, key, overrides...)
}

// Query is QueryFailed with the statement recorded in the metadata.
func Query(cause error, query string) *errorx.Error {
	return Factory.Wrap(cause, QueryFailed, errorx.Options{
		Metadata: map[string]any{"query": query},
	})
}

func prefixCode(opts errorx.Options, _ errorx.TransformContext) errorx.Options {
	if opts.Code != "" && !strings.HasPrefix(opts.Code, CodePrefix) {
		opts.Code = CodePrefix + opts.Code
	}
	return opts
}
