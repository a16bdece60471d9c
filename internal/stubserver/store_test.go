package stubserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sas-panel/internal/models"
)

func intPtr(v int) *int    { return &v }
func idPtr(v int64) *int64 { return &v }

func seedRule(t *testing.T, s *Store, template int64, recipients ...int64) int64 {
	t.Helper()
	id, ok := s.Put(&models.DeliveryRule{
		Template:   template,
		Recipients: recipients,
		StartDate:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	require.True(t, ok)
	return id
}

func TestStore_GetEmpty(t *testing.T) {
	s := NewStore()
	for _, kind := range models.Kinds() {
		got := s.Get(kind, nil, nil, nil)
		assert.NotNil(t, got, kind)
		assert.Empty(t, got, kind)
	}
}

func TestStore_PutAssignsIDsPerKind(t *testing.T) {
	s := NewStore()

	t1, ok := s.Put(&models.Template{Message: "a"})
	require.True(t, ok)
	t2, _ := s.Put(&models.Template{Message: "b"})
	p1, _ := s.Put(&models.Recipient{Telephone: "555"})

	assert.Equal(t, int64(1), t1)
	assert.Equal(t, int64(2), t2)
	assert.Equal(t, int64(1), p1)
}

func TestStore_GetWindow(t *testing.T) {
	s := NewStore()
	for _, msg := range []string{"a", "b", "c", "d"} {
		_, ok := s.Put(&models.Template{Message: msg})
		require.True(t, ok)
	}

	tests := []struct {
		name          string
		limit, offset *int
		want          []string
	}{
		{"all", nil, nil, []string{"a", "b", "c", "d"}},
		{"limit", intPtr(2), nil, []string{"a", "b"}},
		{"offset", nil, intPtr(3), []string{"d"}},
		{"page", intPtr(2), intPtr(1), []string{"b", "c"}},
		{"past end", intPtr(5), intPtr(10), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Get(models.KindTemplate, nil, tt.limit, tt.offset)
			msgs := make([]string, 0, len(got))
			for _, rec := range got {
				msgs = append(msgs, rec.(*models.Template).Message)
			}
			assert.Equal(t, tt.want, msgs)
		})
	}
}

func TestStore_GetByID(t *testing.T) {
	s := NewStore()
	id, _ := s.Put(&models.Recipient{FirstName: "Ada", Telephone: "555"})

	got := s.Get(models.KindRecipient, idPtr(id), nil, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "Ada", got[0].(*models.Recipient).FirstName)

	assert.Empty(t, s.Get(models.KindRecipient, idPtr(99), nil, nil))
}

func TestStore_RecordsAreCopied(t *testing.T) {
	s := NewStore()
	tid, _ := s.Put(&models.Template{Message: "m"})
	pid, _ := s.Put(&models.Recipient{Telephone: "1"})
	rid := seedRule(t, s, tid, pid)

	got := s.Get(models.KindRule, idPtr(rid), nil, nil)[0].(*models.DeliveryRule)
	got.Recipients[0] = 42

	again := s.Get(models.KindRule, idPtr(rid), nil, nil)[0].(*models.DeliveryRule)
	assert.Equal(t, []int64{pid}, again.Recipients)
}

func TestStore_PutReplaceMissing(t *testing.T) {
	s := NewStore()
	_, ok := s.Put(&models.Template{ID: 7, Message: "m"})
	assert.False(t, ok)
}

func TestStore_RuleNeedsTemplate(t *testing.T) {
	s := NewStore()
	_, ok := s.Put(&models.DeliveryRule{Template: 3, StartDate: time.Now()})
	assert.False(t, ok)
}

func TestStore_RuleDropsUnknownRecipients(t *testing.T) {
	s := NewStore()
	tid, _ := s.Put(&models.Template{Message: "m"})
	pid, _ := s.Put(&models.Recipient{Telephone: "1"})

	rid := seedRule(t, s, tid, pid, 40, 41)

	rule := s.Get(models.KindRule, idPtr(rid), nil, nil)[0].(*models.DeliveryRule)
	assert.Equal(t, []int64{pid}, rule.Recipients)
}

func TestStore_DeleteTemplateRemovesItsRules(t *testing.T) {
	s := NewStore()
	keep, _ := s.Put(&models.Template{Message: "keep"})
	drop, _ := s.Put(&models.Template{Message: "drop"})
	kept := seedRule(t, s, keep)
	seedRule(t, s, drop)

	s.Delete(models.KindTemplate, drop)

	rules := s.Get(models.KindRule, nil, nil, nil)
	require.Len(t, rules, 1)
	assert.Equal(t, kept, rules[0].RecordID())
	assert.Len(t, s.Get(models.KindTemplate, nil, nil, nil), 1)
}

func TestStore_DeletePersonUnlinksRules(t *testing.T) {
	s := NewStore()
	tid, _ := s.Put(&models.Template{Message: "m"})
	p1, _ := s.Put(&models.Recipient{Telephone: "1"})
	p2, _ := s.Put(&models.Recipient{Telephone: "2"})
	rid := seedRule(t, s, tid, p1, p2)

	s.Delete(models.KindRecipient, p1)

	rule := s.Get(models.KindRule, idPtr(rid), nil, nil)[0].(*models.DeliveryRule)
	assert.Equal(t, []int64{p2}, rule.Recipients)
}

func TestStore_Settings(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Setting("timezone"))

	s.SetSetting("timezone", "Europe/Paris")
	got := s.Setting("timezone")
	require.NotNil(t, got)
	assert.Equal(t, "Europe/Paris", *got)
}
