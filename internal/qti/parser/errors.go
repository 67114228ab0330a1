package parser

import "strings"

// Fatal parse failure categories. Anything not in this taxonomy is a
// warning and leaves a best-effort result behind.
const (
	errMissingRootElement = "missing root element"
	errMissingManifest    = "missing imsmanifest.xml"
	errMalformedXML       = "malformed xml"
)

// ParseError aborts a parse call: the structural problems are fatal and no
// partial result is returned. Warnings never travel through ParseError.
type ParseError struct {
	Errors []string
}

func (e *ParseError) Error() string {
	if len(e.Errors) == 0 {
		return "parse failed"
	}
	return "parse failed: " + strings.Join(e.Errors, "; ")
}

func parseFailure(msgs ...string) *ParseError {
	return &ParseError{Errors: msgs}
}
