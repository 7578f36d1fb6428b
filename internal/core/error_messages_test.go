package core

import (
	"context"
	"errors"
	"testing"

	crdb "github.com/cockroachdb/errors"

	"github.com/JonMunkholm/crmport/internal/tabular"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "unsupported format sentinel",
			err:         tabular.ErrUnsupportedFormat,
			wantCode:    "FILE006",
			wantMessage: "Unsupported file format",
		},
		{
			name:        "wrapped empty table sentinel",
			err:         crdb.Wrap(tabular.ErrEmptyTable, "decode accounts.csv"),
			wantCode:    "FILE005",
			wantMessage: "The uploaded file is empty",
		},
		{
			name:        "column mismatch",
			err:         &tabular.ParseError{Line: 3, Expected: 2, Got: 1},
			wantCode:    "FILE002",
			wantMessage: "File is not a valid CSV",
		},
		{
			name:        "bad archive",
			err:         crdb.Wrap(errors.New("zip: not a valid zip file"), "open archive"),
			wantCode:    "FILE007",
			wantMessage: "The ZIP archive could not be read",
		},
		{
			name:        "too many imports",
			err:         ErrTooManyImports,
			wantCode:    "IMP001",
			wantMessage: "System is busy processing other imports",
		},
		{
			name:        "deadline",
			err:         crdb.Wrap(context.DeadlineExceeded, "create account"),
			wantCode:    "UPL005",
			wantMessage: "Request timed out",
		},
		{
			name:        "cancelled",
			err:         context.Canceled,
			wantCode:    "UPL004",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "request body too large",
			err:         errors.New("http: request body too large"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "sqlite lock",
			err:         errors.New("database is locked"),
			wantCode:    "DB007",
			wantMessage: "Database was busy with conflicting operations",
		},
		{
			name:        "connection refused",
			err:         errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "foreign key",
			err:         errors.New("FOREIGN KEY constraint failed"),
			wantCode:    "DB003",
			wantMessage: "Referenced record does not exist",
		},
		{
			name:        "rate limit",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error falls back",
			err:         errors.New("something strange"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrTooManyImports)

	expected := "System is busy processing other imports (Code: IMP001). Please wait a moment and try again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", tabular.ErrUnsupportedFormat, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
