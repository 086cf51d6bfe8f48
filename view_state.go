package postsdemo

import (
	"sync"
)

// ViewState holds the records currently on display.
//
// It starts out absent, which is different from holding an empty sequence.
// ViewState is safe for concurrent use.
type ViewState struct {
	mu      sync.RWMutex
	present bool
	records []Record
}

// Posts returns a copy of the current records and whether any have been set.
func (s *ViewState) Posts() ([]Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.present {
		return nil, false
	}
	records := make([]Record, len(s.records))
	copy(records, s.records)
	return records, true
}

// Present reports whether records have been set.
func (s *ViewState) Present() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.present
}

// Replace swaps out the whole sequence.
func (s *ViewState) Replace(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]Record, len(records))
	copy(s.records, records)
	s.present = true
}

// Prepend puts r in front of the current records. Prepending to an absent
// state starts a sequence of one.
func (s *ViewState) Prepend(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]Record, 0, len(s.records)+1)
	records = append(records, r)
	s.records = append(records, s.records...)
	s.present = true
}

// ReplaceByID replaces every record whose id is id with r. Records with other
// ids are left as they are.
func (s *ViewState) ReplaceByID(id int, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.present {
		return ErrNoPosts
	}
	records := make([]Record, len(s.records))
	for i, existing := range s.records {
		if existingID, ok := existing.ID(); ok && existingID == id {
			records[i] = r
		} else {
			records[i] = existing
		}
	}
	s.records = records
	return nil
}

// RemoveByID drops every record whose id is id.
func (s *ViewState) RemoveByID(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.present {
		return ErrNoPosts
	}
	records := make([]Record, 0, len(s.records))
	for _, existing := range s.records {
		if existingID, ok := existing.ID(); ok && existingID == id {
			continue
		}
		records = append(records, existing)
	}
	s.records = records
	return nil
}
