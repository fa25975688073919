// Package pii keeps contact details of dealers and users out of the logs.
package pii

import (
	"log/slog"
	"strings"
)

const RedactedPlaceholder = "[REDACTED]"

// Redactor masks log attributes whose key is in its field set.
type Redactor struct {
	fieldsToRedact map[string]struct{} // Use a map for O(1) lookups
}

// NewRedactor creates a Redactor for the given attribute keys. Keys are
// matched case-insensitively; blanks are ignored.
func NewRedactor(fields []string) *Redactor {
	fieldSet := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		field = strings.ToLower(strings.TrimSpace(field))
		if field != "" {
			fieldSet[field] = struct{}{}
		}
	}
	return &Redactor{fieldsToRedact: fieldSet}
}

// Enabled reports whether any field is redacted.
func (r *Redactor) Enabled() bool {
	return len(r.fieldsToRedact) > 0
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook. It applies at
// every group depth, so a redacted key is masked inside groups as well.
func (r *Redactor) ReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if _, ok := r.fieldsToRedact[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, RedactedPlaceholder)
	}
	return a
}
