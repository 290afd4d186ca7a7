package shortcut

import (
	"errors"
	"strings"
)

// ErrInvalidList is returned when any entry of a shortcut list is malformed.
var ErrInvalidList = errors.New("shortcut list invalid")

const (
	entrySeparator = ","
	fieldSeparator = ":"
)

// Request describes a shortcut the application asks the backend to bind.
type Request struct {
	ID          string
	Description string
	// PreferredTrigger is only meaningful when HasTrigger is set. An entry
	// without a third field has no preference at all.
	PreferredTrigger string
	HasTrigger       bool
}

// Bound is a shortcut the backend actually granted. The set and order may
// differ from what was requested.
type Bound struct {
	ID                 string
	Description        string
	TriggerDescription string
}

// Parse converts "id:description[:trigger]" entries separated by commas into
// requests. A single malformed entry rejects the whole list.
func Parse(text string) ([]Request, error) {
	entries := strings.Split(text, entrySeparator)
	requests := make([]Request, 0, len(entries))

	for _, entry := range entries {
		fields := strings.SplitN(strings.TrimSpace(entry), fieldSeparator, 3)
		if len(fields) < 2 {
			return nil, ErrInvalidList
		}

		req := Request{ID: fields[0], Description: fields[1]}
		if len(fields) == 3 {
			req.PreferredTrigger = fields[2]
			req.HasTrigger = true
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// Format renders requests back into the text form accepted by Parse.
func Format(requests []Request) string {
	entries := make([]string, 0, len(requests))
	for _, req := range requests {
		entry := req.ID + fieldSeparator + req.Description
		if req.HasTrigger {
			entry += fieldSeparator + req.PreferredTrigger
		}
		entries = append(entries, entry)
	}
	return strings.Join(entries, entrySeparator)
}

// IDs returns the identifiers of the bound shortcuts in order.
func IDs(bound []Bound) []string {
	ids := make([]string, 0, len(bound))
	for _, b := range bound {
		ids = append(ids, b.ID)
	}
	return ids
}
