// internal/models/recipient.go
package models

import (
	"strconv"
	"strings"

	apperrors "sas-panel/internal/common/errors"
)

// Recipient is a person messages are delivered to. Only Telephone is required.
type Recipient struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Telephone string `json:"telephone"`
	Address   string `json:"address"`
}

func (r *Recipient) Kind() Kind      { return KindRecipient }
func (r *Recipient) RecordID() int64 { return r.ID }
func (r *Recipient) sealed()         {}

func (r *Recipient) Validate() error {
	if strings.TrimSpace(r.Telephone) == "" {
		return apperrors.NewInvalidRecordError(string(KindRecipient), "telephone is required")
	}
	return nil
}

// FullName joins the non-empty name parts.
func (r *Recipient) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Field returns a field by its wire name, for template placeholders.
func (r *Recipient) Field(name string) (string, bool) {
	switch name {
	case "id":
		if r.ID == 0 {
			return "", true
		}
		return strconv.FormatInt(r.ID, 10), true
	case "first_name":
		return r.FirstName, true
	case "last_name":
		return r.LastName, true
	case "telephone":
		return r.Telephone, true
	case "address":
		return r.Address, true
	}
	return "", false
}
