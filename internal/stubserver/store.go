package stubserver

import (
	"sort"
	"sync"

	"sas-panel/internal/models"
)

// Store is the stub's in-memory database. Records are copied on the way in
// and out so callers never share state with it.
type Store struct {
	mu        sync.RWMutex
	nextID    map[models.Kind]int64
	templates map[int64]models.Template
	people    map[int64]models.Recipient
	rules     map[int64]models.DeliveryRule
	settings  map[string]*string
}

func NewStore() *Store {
	return &Store{
		nextID:    map[models.Kind]int64{},
		templates: map[int64]models.Template{},
		people:    map[int64]models.Recipient{},
		rules:     map[int64]models.DeliveryRule{},
		settings:  map[string]*string{},
	}
}

func (s *Store) allocate(kind models.Kind) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

// window applies offset then limit to n ordered items.
func window(n int, limit, offset *int) (int, int) {
	start := 0
	if offset != nil && *offset > 0 {
		start = *offset
	}
	if start > n {
		start = n
	}
	end := n
	if limit != nil && *limit >= 0 && start+*limit < end {
		end = start + *limit
	}
	return start, end
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Get returns one record by id, or a window of all records of kind in id
// order when id is nil.
func (s *Store) Get(kind models.Kind, id *int64, limit, offset *int) []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []int64
	switch {
	case id != nil:
		ids = []int64{*id}
	case kind == models.KindTemplate:
		ids = sortedIDs(s.templates)
	case kind == models.KindRecipient:
		ids = sortedIDs(s.people)
	case kind == models.KindRule:
		ids = sortedIDs(s.rules)
	}
	if id == nil {
		start, end := window(len(ids), limit, offset)
		ids = ids[start:end]
	}

	out := make([]models.Record, 0, len(ids))
	for _, i := range ids {
		if rec := s.lookup(kind, i); rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

// lookup must be called with s.mu held.
func (s *Store) lookup(kind models.Kind, id int64) models.Record {
	switch kind {
	case models.KindTemplate:
		if t, ok := s.templates[id]; ok {
			return &t
		}
	case models.KindRecipient:
		if p, ok := s.people[id]; ok {
			return &p
		}
	case models.KindRule:
		if r, ok := s.rules[id]; ok {
			r.Recipients = append([]int64{}, r.Recipients...)
			return &r
		}
	}
	return nil
}

// Put inserts rec when its id is zero and replaces the stored record
// otherwise. It returns the record's id and false when a replaced record does
// not exist or a rule references a missing template.
func (s *Store) Put(rec models.Record) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := rec.RecordID()
	if id != 0 && s.lookup(rec.Kind(), id) == nil {
		return 0, false
	}

	switch r := rec.(type) {
	case *models.Template:
		if id == 0 {
			id = s.allocate(models.KindTemplate)
		}
		t := *r
		t.ID = id
		s.templates[id] = t
	case *models.Recipient:
		if id == 0 {
			id = s.allocate(models.KindRecipient)
		}
		p := *r
		p.ID = id
		s.people[id] = p
	case *models.DeliveryRule:
		if _, ok := s.templates[r.Template]; !ok {
			return 0, false
		}
		if id == 0 {
			id = s.allocate(models.KindRule)
		}
		rule := *r
		rule.ID = id
		// Unknown recipients are dropped, as the daemon does.
		rule.Recipients = make([]int64, 0, len(r.Recipients))
		for _, pid := range r.Recipients {
			if _, ok := s.people[pid]; ok {
				rule.Recipients = append(rule.Recipients, pid)
			}
		}
		s.rules[id] = rule
	default:
		return 0, false
	}
	return id, true
}

// Delete removes a record. Removing a person unlinks it from every rule;
// removing a template removes the rules that send it.
func (s *Store) Delete(kind models.Kind, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case models.KindTemplate:
		delete(s.templates, id)
		for rid, r := range s.rules {
			if r.Template == id {
				delete(s.rules, rid)
			}
		}
	case models.KindRecipient:
		delete(s.people, id)
		for rid, r := range s.rules {
			kept := r.Recipients[:0:0]
			for _, pid := range r.Recipients {
				if pid != id {
					kept = append(kept, pid)
				}
			}
			r.Recipients = kept
			s.rules[rid] = r
		}
	case models.KindRule:
		delete(s.rules, id)
	}
}

// Setting returns nil when the key is unset.
func (s *Store) Setting(key string) *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.settings[key]; ok && v != nil {
		out := *v
		return &out
	}
	return nil
}

func (s *Store) SetSetting(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = &value
}
