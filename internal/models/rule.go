// internal/models/rule.go
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	apperrors "sas-panel/internal/common/errors"
)

// DeliveryRule schedules a template to be sent to a set of recipients,
// once at StartDate or repeatedly every Interval until EndDate.
type DeliveryRule struct {
	ID           int64
	Label        string
	Recipients   []int64
	Template     int64
	StartDate    time.Time
	EndDate      *time.Time
	Interval     time.Duration // zero means do not repeat
	LastExecuted *time.Time
}

func (r *DeliveryRule) Kind() Kind      { return KindRule }
func (r *DeliveryRule) RecordID() int64 { return r.ID }
func (r *DeliveryRule) sealed()         {}

// Repeats reports whether the rule fires more than once.
func (r *DeliveryRule) Repeats() bool {
	return r.Interval > 0
}

// Validate checks the ordering constraints between the rule's dates.
func (r *DeliveryRule) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return apperrors.NewInvalidRecordError(string(KindRule), fmt.Sprintf(format, args...))
	}

	if r.Template == 0 {
		return invalid("template is required")
	}
	if r.StartDate.IsZero() {
		return invalid("start date is required")
	}
	if r.Interval < 0 {
		return invalid("interval %s is negative", r.Interval)
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return invalid("end date %s is before start date %s",
			FormatTimestamp(*r.EndDate), FormatTimestamp(r.StartDate))
	}
	if r.LastExecuted != nil {
		if r.LastExecuted.Before(r.StartDate) {
			return invalid("last executed %s is before start date %s",
				FormatTimestamp(*r.LastExecuted), FormatTimestamp(r.StartDate))
		}
		if r.EndDate != nil && r.LastExecuted.After(*r.EndDate) {
			return invalid("last executed %s is after end date %s",
				FormatTimestamp(*r.LastExecuted), FormatTimestamp(*r.EndDate))
		}
	}
	return nil
}

// NextExecution returns when the rule fires next as seen at now, and false
// when it never fires again. A result in the past means "due now".
func (r *DeliveryRule) NextExecution(now time.Time) (time.Time, bool) {
	if r.LastExecuted == nil {
		if !r.StartDate.Before(now) {
			return r.StartDate, true
		}
		return now, true
	}
	if !r.Repeats() {
		return time.Time{}, false
	}

	next := r.LastExecuted.Add(r.Interval)
	if r.EndDate != nil && next.After(*r.EndDate) {
		// One final run at the end date if the last run fell short of it.
		if r.LastExecuted.Before(*r.EndDate) {
			return *r.EndDate, true
		}
		return time.Time{}, false
	}
	return next, true
}

type ruleWire struct {
	ID           int64   `json:"id,omitempty"`
	Recipients   []int64 `json:"recipients"`
	Template     int64   `json:"template"`
	StartDate    string  `json:"start_date"`
	EndDate      *string `json:"end_date"`
	Interval     float64 `json:"interval"` // seconds
	LastExecuted *string `json:"last_executed"`
	Label        *string `json:"label"`
}

func (r *DeliveryRule) MarshalJSON() ([]byte, error) {
	w := ruleWire{
		ID:           r.ID,
		Recipients:   r.Recipients,
		Template:     r.Template,
		StartDate:    FormatTimestamp(r.StartDate),
		EndDate:      formatOptional(r.EndDate),
		Interval:     r.Interval.Seconds(),
		LastExecuted: formatOptional(r.LastExecuted),
	}
	if w.Recipients == nil {
		w.Recipients = []int64{}
	}
	if r.Label != "" {
		label := r.Label
		w.Label = &label
	}
	return json.Marshal(w)
}

func (r *DeliveryRule) UnmarshalJSON(data []byte) error {
	var w ruleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	start, err := ParseTimestamp(w.StartDate)
	if err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	end, err := parseOptional(w.EndDate)
	if err != nil {
		return fmt.Errorf("end_date: %w", err)
	}
	last, err := parseOptional(w.LastExecuted)
	if err != nil {
		return fmt.Errorf("last_executed: %w", err)
	}
	if math.IsNaN(w.Interval) || math.IsInf(w.Interval, 0) {
		return fmt.Errorf("interval: not a finite number")
	}
	if math.Abs(w.Interval) > float64(MaxIntervalSeconds) {
		return fmt.Errorf("interval: %g seconds is out of range", w.Interval)
	}

	*r = DeliveryRule{
		ID:           w.ID,
		Recipients:   w.Recipients,
		Template:     w.Template,
		StartDate:    start,
		EndDate:      end,
		Interval:     time.Duration(math.Round(w.Interval * float64(time.Second))),
		LastExecuted: last,
	}
	if w.Label != nil {
		r.Label = *w.Label
	}
	return nil
}
