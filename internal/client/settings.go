package client

import (
	"context"
	"encoding/json"

	apperrors "sas-panel/internal/common/errors"
	"sas-panel/internal/common/validation"
)

// Setting is a backend scalar with its own get/alter actions.
type Setting struct {
	Object string
	Key    string // reply field and alter parameter
	schema *validation.Schema
}

var (
	SettingTimezone  = Setting{Object: ObjectTimezone, Key: "timezone", schema: scalarSchema("timezone")}
	SettingSMSAPIKey = Setting{Object: ObjectSMSAPIKey, Key: "api-key", schema: scalarSchema("api-key")}
	SettingTelephone = Setting{Object: ObjectTelephone, Key: "telephone", schema: scalarSchema("telephone")}
)

// Settings lists every scalar setting.
func Settings() []Setting {
	return []Setting{SettingTimezone, SettingSMSAPIKey, SettingTelephone}
}

// Get returns the setting's value; found is false when the backend has none.
func (c *Client) Get(ctx context.Context, s Setting) (value string, found bool, err error) {
	action := Action{Object: s.Object, Verb: VerbGet}
	raw, err := c.call(ctx, action, struct{}{}, c.Credential(), s.schema)
	if err != nil {
		return "", false, err
	}

	var reply map[string]json.RawMessage
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", false, apperrors.NewDecodeFailedError(action.String(), err.Error())
	}
	field, ok := reply[s.Key]
	if !ok {
		return "", false, nil
	}
	var v *string
	if err := json.Unmarshal(field, &v); err != nil {
		return "", false, apperrors.NewDecodeFailedError(action.String(), err.Error())
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (c *Client) Set(ctx context.Context, s Setting, value string) (bool, error) {
	return c.callStatus(ctx, Action{Object: s.Object, Verb: VerbAlter},
		map[string]string{s.Key: value}, c.Credential())
}

func (c *Client) Timezone(ctx context.Context) (string, bool, error) {
	return c.Get(ctx, SettingTimezone)
}

func (c *Client) SetTimezone(ctx context.Context, tz string) (bool, error) {
	return c.Set(ctx, SettingTimezone, tz)
}

func (c *Client) SMSAPIKey(ctx context.Context) (string, bool, error) {
	return c.Get(ctx, SettingSMSAPIKey)
}

func (c *Client) SetSMSAPIKey(ctx context.Context, key string) (bool, error) {
	return c.Set(ctx, SettingSMSAPIKey, key)
}

func (c *Client) Telephone(ctx context.Context) (string, bool, error) {
	return c.Get(ctx, SettingTelephone)
}

func (c *Client) SetTelephone(ctx context.Context, number string) (bool, error) {
	return c.Set(ctx, SettingTelephone, number)
}
