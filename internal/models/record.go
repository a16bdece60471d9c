// internal/models/record.go
package models

import (
	"fmt"
	"strings"
)

// Kind is the object kind used in the first slot of a request action.
type Kind string

const (
	KindTemplate  Kind = "template"
	KindRecipient Kind = "people"
	KindRule      Kind = "rule"
)

// Kinds lists every record kind in display order.
func Kinds() []Kind {
	return []Kind{KindTemplate, KindRecipient, KindRule}
}

// ParseKind accepts the wire tags plus the usual singular/plural spellings.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "template", "templates":
		return KindTemplate, nil
	case "people", "person", "recipient", "recipients":
		return KindRecipient, nil
	case "rule", "rules":
		return KindRule, nil
	}
	return "", fmt.Errorf("unknown record kind %q", s)
}

// Record is one of *Template, *Recipient or *DeliveryRule. The set is closed:
// code switching on a Record handles exactly those three.
type Record interface {
	Kind() Kind
	// RecordID is the backend-assigned identifier; zero until the record is added.
	RecordID() int64
	Validate() error

	sealed()
}

// NewRecord returns an empty record of the given kind, ready to be decoded into.
func NewRecord(kind Kind) (Record, error) {
	switch kind {
	case KindTemplate:
		return &Template{}, nil
	case KindRecipient:
		return &Recipient{}, nil
	case KindRule:
		return &DeliveryRule{}, nil
	}
	return nil, fmt.Errorf("unknown record kind %q", kind)
}
