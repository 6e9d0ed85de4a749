package core

// error_messages.go maps technical errors to messages a client can act on.
//
// Codes are grouped by category:
//
//	FILE001  file too large          FILE005  empty file
//	FILE002  malformed quoting       FILE006  field count mismatch (strict mode)
//	FILE003  invalid UTF-8           FILE007  unsupported delimiter
//	FILE004  no file in request
//
//	UPL001   import slots exhausted  UPL003   request timed out
//	UPL002   request cancelled
//
//	TBL001   table not found         TBL003   table name missing
//	TBL002   malformed table id
//
//	REQ001   malformed request parameter
//	DB001    database unreachable
//	RATE001  rate limited
//	ERR000   anything else; check the server log for the technical error
//
// Typed and sentinel errors are matched with errors.Is / errors.As first.
// Errors that only carry text (from net/http or the driver) fall back to a
// case-insensitive substring match. The first matching rule wins.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/tabload/internal/store"
	"github.com/JonMunkholm/tabload/internal/table"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

var (
	// ErrNoFile is returned when an import request carries no file.
	ErrNoFile = errors.New("no file provided")

	// ErrNameRequired is returned when Import is called without a table name.
	ErrNameRequired = errors.New("table name required")

	// ErrInvalidID is returned when a table id is not a UUID.
	ErrInvalidID = errors.New("invalid table id")

	// ErrBadRequest wraps malformed request parameters.
	ErrBadRequest = errors.New("invalid request parameter")
)

type errorRule struct {
	match func(err error, text string) bool
	msg   UserMessage
}

func is(target error) func(error, string) bool {
	return func(err error, _ string) bool { return errors.Is(err, target) }
}

func contains(patterns ...string) func(error, string) bool {
	return func(_ error, text string) bool {
		for _, p := range patterns {
			if strings.Contains(text, p) {
				return true
			}
		}
		return false
	}
}

func isParseError(err error, _ string) bool {
	var pe *csv.ParseError
	return errors.As(err, &pe) && !errors.Is(err, table.ErrFieldCount)
}

var errorRules = []errorRule{
	// File errors
	{contains("file too large", "request body too large"), UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file into smaller parts",
		Code:    "FILE001",
	}},
	{is(table.ErrFieldCount), UserMessage{
		Message: "A row has a different number of fields than the header",
		Action:  "Fix the row or import without strict mode",
		Code:    "FILE006",
	}},
	{isParseError, UserMessage{
		Message: "File is not valid delimited text",
		Action:  "Check for unbalanced quotes and that the delimiter is correct",
		Code:    "FILE002",
	}},
	{is(table.ErrInvalidEncoding), UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save the file as UTF-8",
		Code:    "FILE003",
	}},
	{is(ErrNoFile), UserMessage{
		Message: "No file was selected",
		Action:  "Attach a file in the \"file\" form field",
		Code:    "FILE004",
	}},
	{is(table.ErrNoHeader), UserMessage{
		Message: "The file is empty",
		Action:  "Upload a file with a header line",
		Code:    "FILE005",
	}},
	{is(table.ErrInvalidDelimiter), UserMessage{
		Message: "Unsupported delimiter",
		Action:  "Use a single character other than a quote or line break",
		Code:    "FILE007",
	}},

	// Import errors
	{is(ErrTooManyImports), UserMessage{
		Message: "Too many imports in progress",
		Action:  "Please wait a moment and try again",
		Code:    "UPL001",
	}},
	{is(context.Canceled), UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL002",
	}},
	{is(context.DeadlineExceeded), UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "UPL003",
	}},

	// Table errors
	{is(store.ErrNotFound), UserMessage{
		Message: "Table not found",
		Action:  "List tables to find a valid id",
		Code:    "TBL001",
	}},
	{is(ErrInvalidID), UserMessage{
		Message: "Table id is not valid",
		Action:  "Use the id returned by the import",
		Code:    "TBL002",
	}},
	{is(ErrNameRequired), UserMessage{
		Message: "Table name is required",
		Action:  "Provide a name for the imported table",
		Code:    "TBL003",
	}},

	{is(ErrBadRequest), UserMessage{
		Message: "A request parameter is not valid",
		Action:  "Check the query string and form fields",
		Code:    "REQ001",
	}},

	// Infrastructure
	{contains("connection refused", "connection reset", "failed to connect"), UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB001",
	}},
	{contains("rate limit"), UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the zero UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	text := strings.ToLower(err.Error())
	for _, rule := range errorRules {
		if rule.match(err, text) {
			return rule.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders MapError as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
