package errorx_test

import (
	"testing"

	"github.com/shiwano/errorx"
)

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", errorx.DefaultMessage},
		{"   ", errorx.DefaultMessage},
		{"user not found", "User not found."},
		{"  user not found  ", "User not found."},
		{"already done.", "Already done."},
		{"are you sure?", "Are you sure?"},
		{"stop!", "Stop!"},
		{"see docs (section 2)", "See docs (section 2)"},
		{"values [a, b]", "Values [a, b]"},
		{"first. second", "First. Second."},
		{"ärger", "Ärger."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := errorx.FormatMessage(tt.in); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCodeFromName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DatabaseError", "DATABASE_ERROR"},
		{"not found", "NOT_FOUND"},
		{"HTTPError", "HTTPERROR"},
		{"already_SNAKE", "ALREADY_SNAKE"},
		{"user-id v2", "USERID_V2"},
		{" foo", "_FOO"},
		{"foo ", "FOO_"},
		{"tab\t\tseparated", "TAB_SEPARATED"},
		{"éB", "B"},
		{"aÉb", "AB"},
		{"", errorx.DefaultCode},
		{"   ", errorx.DefaultCode},
		{"日本語", errorx.DefaultCode},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := errorx.CodeFromName(tt.in); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}
