package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound            = errors.New("post doesn't exist")
	ErrInvalidState        = errors.New("post is not in a publishable state")
	ErrAlreadyPublishing   = errors.New("post is already being published")
	ErrAccountNotConnected = errors.New("social account is not connected")
)

// ContentValidationError aggregates per-platform violations so the
// caller sees every problem in one response instead of fixing them one
// request at a time.
type ContentValidationError struct {
	Violations map[string][]string
}

func (e *ContentValidationError) Error() string {
	platforms := make([]string, 0, len(e.Violations))
	for p := range e.Violations {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)

	var sb strings.Builder
	sb.WriteString("content validation failed: ")
	for i, p := range platforms {
		if i > 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "%s: %s", p, strings.Join(e.Violations[p], ", "))
	}
	return sb.String()
}
