package client

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "sas-panel/internal/common/errors"
	"sas-panel/internal/models"
)

// Fetch returns the records of kind matching f, in backend order. An empty
// result is an empty slice, not an error.
func (c *Client) Fetch(ctx context.Context, kind models.Kind, f Filter) ([]models.Record, error) {
	action := RecordAction(kind, VerbGet)
	cred := c.Credential()
	key := cacheKey(cred, f)

	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, kind, key)
		if err != nil {
			c.log.Warn("result cache read failed", map[string]interface{}{"kind": string(kind), "error": err})
		} else if ok {
			var results []json.RawMessage
			if err := json.Unmarshal(cached, &results); err == nil {
				if records, err := decodeRecords(action, kind, results); err == nil {
					return records, nil
				}
			}
			c.log.Warn("discarding unreadable cache entry", map[string]interface{}{"kind": string(kind), "key": key})
		}
	}

	raw, err := c.call(ctx, action, f.params(), cred, fetchSchema)
	if err != nil {
		return nil, err
	}

	var reply fetchReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, apperrors.NewDecodeFailedError(action.String(), err.Error())
	}
	records, err := decodeRecords(action, kind, reply.Results)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		encoded, _ := json.Marshal(reply.Results)
		if err := c.cache.Put(ctx, kind, key, encoded); err != nil {
			c.log.Warn("result cache write failed", map[string]interface{}{"kind": string(kind), "error": err})
		}
	}
	return records, nil
}

func decodeRecords(action Action, kind models.Kind, results []json.RawMessage) ([]models.Record, error) {
	schema, ok := recordSchemas[kind]
	if !ok {
		return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("unknown record kind %q", kind))
	}

	records := make([]models.Record, 0, len(results))
	for i, item := range results {
		if res := schema.ValidateBytes(item); !res.Valid {
			return nil, apperrors.NewDecodeFailedError(action.String(),
				fmt.Sprintf("result %d: %s", i, res.Summary()))
		}
		rec, err := models.NewRecord(kind)
		if err != nil {
			return nil, apperrors.NewInvalidRequestError(err.Error())
		}
		if err := json.Unmarshal(item, rec); err != nil {
			return nil, apperrors.NewDecodeFailedError(action.String(),
				fmt.Sprintf("result %d: %s", i, err))
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) Templates(ctx context.Context, f Filter) ([]*models.Template, error) {
	records, err := c.Fetch(ctx, models.KindTemplate, f)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Template, len(records))
	for i, r := range records {
		out[i] = r.(*models.Template)
	}
	return out, nil
}

func (c *Client) Recipients(ctx context.Context, f Filter) ([]*models.Recipient, error) {
	records, err := c.Fetch(ctx, models.KindRecipient, f)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Recipient, len(records))
	for i, r := range records {
		out[i] = r.(*models.Recipient)
	}
	return out, nil
}

func (c *Client) Rules(ctx context.Context, f Filter) ([]*models.DeliveryRule, error) {
	records, err := c.Fetch(ctx, models.KindRule, f)
	if err != nil {
		return nil, err
	}
	out := make([]*models.DeliveryRule, len(records))
	for i, r := range records {
		out[i] = r.(*models.DeliveryRule)
	}
	return out, nil
}

// Add creates rec and returns its new identifier, or nil when the backend
// reported none. rec must not carry an identifier yet.
func (c *Client) Add(ctx context.Context, rec models.Record) (*int64, error) {
	if rec.RecordID() != 0 {
		return nil, apperrors.NewInvalidRequestError("add: record already has an id")
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	action := RecordAction(rec.Kind(), VerbAdd)
	raw, err := c.call(ctx, action, rec, c.Credential(), addSchema)
	if err != nil {
		return nil, err
	}

	var reply addReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, apperrors.NewDecodeFailedError(action.String(), err.Error())
	}
	if reply.AddedID != nil {
		c.invalidate(ctx, rec.Kind())
	}
	return reply.AddedID, nil
}

// Alter replaces the stored record with rec's identifier.
func (c *Client) Alter(ctx context.Context, rec models.Record) (bool, error) {
	if rec.RecordID() == 0 {
		return false, apperrors.NewInvalidRequestError("alter: record has no id")
	}
	if err := rec.Validate(); err != nil {
		return false, err
	}

	ok, err := c.callStatus(ctx, RecordAction(rec.Kind(), VerbAlter), rec, c.Credential())
	if ok {
		c.invalidate(ctx, rec.Kind())
	}
	return ok, err
}

func (c *Client) Remove(ctx context.Context, kind models.Kind, id int64) (bool, error) {
	ok, err := c.callStatus(ctx, RecordAction(kind, VerbRemove), idParams{ID: id}, c.Credential())
	if ok {
		c.invalidate(ctx, kind)
	}
	return ok, err
}

// invalidate drops cached results of kind and of the kinds that embed it:
// rules list their template and recipients.
func (c *Client) invalidate(ctx context.Context, kind models.Kind) {
	if c.cache == nil {
		return
	}
	kinds := []models.Kind{kind}
	if kind != models.KindRule {
		kinds = append(kinds, models.KindRule)
	}
	if err := c.cache.Invalidate(ctx, kinds...); err != nil {
		c.log.Warn("result cache invalidation failed", map[string]interface{}{"kind": string(kind), "error": err})
	}
}
