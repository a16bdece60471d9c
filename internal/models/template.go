// internal/models/template.go
package models

import (
	"fmt"
	"strings"

	apperrors "sas-panel/internal/common/errors"
)

// Template is a message body with $(field) placeholders filled per recipient.
type Template struct {
	ID      int64  `json:"id,omitempty"`
	Label   string `json:"label"`
	Message string `json:"message"`
}

func (t *Template) Kind() Kind      { return KindTemplate }
func (t *Template) RecordID() int64 { return t.ID }
func (t *Template) sealed()         {}

// Validate rejects messages with an unterminated placeholder.
func (t *Template) Validate() error {
	if _, err := t.Placeholders(); err != nil {
		return apperrors.NewInvalidRecordError(string(KindTemplate), err.Error())
	}
	return nil
}

// DisplayName is the label, or the message when no label is set.
func (t *Template) DisplayName() string {
	if t.Label != "" {
		return t.Label
	}
	return t.Message
}

type placeholder struct {
	start, end int // byte offsets of "$(" and ")"
	name       string
}

func parsePlaceholders(message string) ([]placeholder, error) {
	var marks []placeholder
	from := 0
	for {
		rel := strings.Index(message[from:], "$(")
		if rel == -1 {
			return marks, nil
		}
		start := from + rel
		closeRel := strings.Index(message[start:], ")")
		if closeRel == -1 {
			return nil, apperrors.NewTemplateMalformedError(
				fmt.Sprintf("placeholder at offset %d is not closed", start))
		}
		end := start + closeRel
		marks = append(marks, placeholder{start: start, end: end, name: message[start+2 : end]})
		from = end
	}
}

// Placeholders returns the field names referenced by the message, in order.
func (t *Template) Placeholders() ([]string, error) {
	marks, err := parsePlaceholders(t.Message)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(marks))
	for i, m := range marks {
		names[i] = m.name
	}
	return names, nil
}

// Compile fills the placeholders from r. Placeholders naming an unknown or
// empty field are left in place.
func (t *Template) Compile(r *Recipient) (string, error) {
	marks, err := parsePlaceholders(t.Message)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	last := 0
	for _, m := range marks {
		val, ok := r.Field(m.name)
		if !ok || val == "" {
			continue
		}
		b.WriteString(t.Message[last:m.start])
		b.WriteString(val)
		last = m.end + 1
	}
	b.WriteString(t.Message[last:])
	return b.String(), nil
}
