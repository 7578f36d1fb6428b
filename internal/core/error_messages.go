package core

// error_messages.go maps technical errors to user-facing messages with a
// code users can quote to support.
//
//	FILE001  File too large           "file too large", "request body too large"
//	FILE002  Invalid CSV              "invalid csv", "expected .* columns"
//	FILE004  No file                  "no file provided"
//	FILE005  Empty file               "empty file", "at least a header row"
//	FILE006  Unsupported format       tabular.ErrUnsupportedFormat
//	FILE007  Invalid archive          "open archive", "zip: not a valid zip file"
//	IMP001   System busy              ErrTooManyImports
//	UPL004   Request cancelled        context.Canceled
//	UPL005   Request timeout          context.DeadlineExceeded
//	DB001-7  Store failures           constraint, connection and locking messages
//	RATE001  Rate limited             "rate limit"
//	ERR000   Fallback                 anything else; check the logs
//
// Sentinel errors are matched with errors.Is first; free-text patterns are
// matched case-insensitively in order, first match wins.

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/JonMunkholm/crmport/internal/tabular"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgTooLarge = UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the data into several smaller files",
		Code:    "FILE001",
	}
	msgInvalidCSV = UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure every row has the same number of comma-separated columns as the header",
		Code:    "FILE002",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV or ZIP file to upload",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Include a header row and at least one data row",
		Code:    "FILE005",
	}
	msgUnsupported = UserMessage{
		Message: "Unsupported file format",
		Action:  "Please upload CSV or ZIP files",
		Code:    "FILE006",
	}
	msgInvalidArchive = UserMessage{
		Message: "The ZIP archive could not be read",
		Action:  "Re-create the archive and try again",
		Code:    "FILE007",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try importing a smaller file or try again later",
		Code:    "UPL005",
	}
)

// sentinelMessages are checked with errors.Is before any text pattern.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{tabular.ErrUnsupportedFormat, msgUnsupported},
	{tabular.ErrEmptyTable, msgEmptyFile},
	{ErrTooManyImports, msgBusy},
	{context.DeadlineExceeded, msgTimeout},
	{context.Canceled, msgCancelled},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// More specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// File errors
	{"file too large", msgTooLarge},
	{"request body too large", msgTooLarge},
	{"invalid csv", msgInvalidCSV},
	{"columns, got", msgInvalidCSV},
	{"no file provided", msgNoFile},
	{"empty file", msgEmptyFile},
	{"at least a header row", msgEmptyFile},
	{"unsupported file format", msgUnsupported},
	{"not a valid zip file", msgInvalidArchive},
	{"open archive", msgInvalidArchive},

	// Store constraint errors
	{"unique constraint", UserMessage{
		Message: "This value must be unique but already exists",
		Action:  "Check for duplicate entries in your file",
		Code:    "DB002",
	}},
	{"foreign key", UserMessage{
		Message: "Referenced record does not exist",
		Action:  "Import accounts before the records that reference them",
		Code:    "DB003",
	}},

	// Store connection errors
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"database is locked", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}},
	{"context deadline exceeded", msgTimeout},
	{"context canceled", msgCancelled},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try importing a smaller file or try again later",
		Code:    "DB006",
	}},
	{"too many imports", msgBusy},

	// Rate limiting
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when nothing matches (ERR000). Support staff
// should check the application logs for the original error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	msg := MapError(tabular.ErrUnsupportedFormat)
//	// msg.Code == "FILE006"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
