package client

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"sas-panel/internal/models"
)

// Verbs in the second slot of an action.
const (
	VerbGet    = "get"
	VerbAdd    = "add"
	VerbAlter  = "alter"
	VerbRemove = "remove"
	VerbLogin  = "login"
)

// Object kinds that are not records.
const (
	ObjectUsers     = "users"
	ObjectTimezone  = "timezone"
	ObjectSMSAPIKey = "sms-api-key"
	ObjectTelephone = "telephone"
)

// Action is the [object, verb] path of a request.
type Action struct {
	Object string
	Verb   string
}

func RecordAction(kind models.Kind, verb string) Action {
	return Action{Object: string(kind), Verb: verb}
}

func (a Action) String() string {
	return a.Object + " " + a.Verb
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{a.Object, a.Verb})
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("action must have 2 parts, got %d", len(parts))
	}
	a.Object, a.Verb = parts[0], parts[1]
	return nil
}

// Credential is the opaque identity attached to every request.
type Credential struct {
	Username string
	Password string
}

// Request is the backend-bound envelope. The backend rejects envelopes
// without username and password keys, so both are always present.
type Request struct {
	Action     Action          `json:"action"`
	Parameters json.RawMessage `json:"parameters"`
	ID         string          `json:"id"`
	Username   string          `json:"username"`
	Password   string          `json:"password"`
}

// Filter narrows a fetch. Nil fields are sent as null.
type Filter struct {
	ID     *int64
	Limit  *int
	Offset *int
}

// ByID selects a single record.
func ByID(id int64) Filter {
	return Filter{ID: &id}
}

// Page selects a window of records.
func Page(limit, offset int) Filter {
	return Filter{Limit: &limit, Offset: &offset}
}

func (f Filter) params() fetchParams {
	return fetchParams{ID: f.ID, Limit: f.Limit, Offset: f.Offset}
}

// Key identifies the filter in the result cache.
func (f Filter) Key() string {
	part := func(name string, v *int64) string {
		if v == nil {
			return name + "=*"
		}
		return name + "=" + strconv.FormatInt(*v, 10)
	}
	intPart := func(name string, v *int) string {
		if v == nil {
			return name + "=*"
		}
		return name + "=" + strconv.Itoa(*v)
	}
	return strings.Join([]string{part("id", f.ID), intPart("limit", f.Limit), intPart("offset", f.Offset)}, ";")
}

type fetchParams struct {
	ID     *int64 `json:"id"`
	Limit  *int   `json:"limit"`
	Offset *int   `json:"offset"`
}

type idParams struct {
	ID int64 `json:"id"`
}

type credentialParams struct {
	NewUsername string `json:"new_username"`
	NewPassword string `json:"new_password"`
}

// Reply shapes, one per verb family.
type replyHeader struct {
	ID *string `json:"id"`
}

type fetchReply struct {
	Results []json.RawMessage `json:"results"`
}

type addReply struct {
	AddedID *int64 `json:"added_id"`
}

type statusReply struct {
	Status *string `json:"status"`
}

const statusSuccess = "success"

// cacheKey scopes a filter's cache entry to the credential that fetched it,
// so a different login never sees another user's results.
func cacheKey(cred Credential, f Filter) string {
	sum := sha256.Sum256([]byte(cred.Username + "\x00" + cred.Password))
	return hex.EncodeToString(sum[:12]) + ";" + f.Key()
}
