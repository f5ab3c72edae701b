// Package interview provides the persistent interview schedule.
//
// Records live in BadgerDB under interview:<key> where key is an
// immutable counter value. The user-visible id is a dense 1..N rank in
// ascending time order, recomputed after every mutation; the two must
// never be conflated.
package interview

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"interviewbot/pkg/logger"
	"interviewbot/pkg/models"
	"interviewbot/pkg/storage"
)

const (
	recordPrefix = "interview:"
	counterKey   = "seq:interview"
)

// ErrNotFound is returned when a rank does not resolve to a record.
var ErrNotFound = errors.New("interview not found")

// ErrStoreUnavailable wraps durable-storage failures.
var ErrStoreUnavailable = errors.New("interview store unavailable")

// Service provides interview schedule management
type Service struct {
	store  *storage.Store
	logger *logger.Logger

	// Serializes insert/delete/renumber so a renumbering write never
	// interleaves with another mutation's read of the ordering.
	mu sync.Mutex
}

// New creates a new interview service
func New(store *storage.Store) *Service {
	return &Service{
		store:  store,
		logger: logger.New("interview"),
	}
}

func recordKey(key uint64) string {
	return fmt.Sprintf("%s%020d", recordPrefix, key)
}

// Insert persists a new interview and renumbers the schedule.
// Duplicate times and subjects are allowed.
func (s *Service) Insert(userID string, at time.Time) (*models.InterviewRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.store.Increment(counterKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	record := &models.InterviewRecord{
		Key:         key,
		UserID:      userID,
		ScheduledAt: at,
	}

	if err := s.store.Set(recordKey(key), record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := s.renumberLocked(); err != nil {
		return nil, err
	}

	// Re-read so the caller sees the rank assigned by renumbering
	if err := s.store.Get(recordKey(key), record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return record, nil
}

// DeleteByRank removes the record at the given 1-based chronological
// rank. Expired records are pruned first so the rank matches what the
// last listing showed, then the surviving schedule is renumbered.
func (s *Service) DeleteByRank(rank int, now time.Time) (*models.InterviewRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.pruneExpiredLocked(now); err != nil {
		return nil, err
	}

	records, err := s.loadOrdered()
	if err != nil {
		return nil, err
	}

	if rank < 1 || rank > len(records) {
		return nil, fmt.Errorf("%w: rank %d", ErrNotFound, rank)
	}

	removed := records[rank-1]
	if err := s.store.Delete(recordKey(removed.Key)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := s.renumberLocked(); err != nil {
		return nil, err
	}

	return &removed, nil
}

// PruneExpired deletes every record scheduled before now and returns
// how many were removed.
func (s *Service) PruneExpired(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneExpiredLocked(now)
}

func (s *Service) pruneExpiredLocked(now time.Time) (int, error) {
	records, err := s.loadOrdered()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, record := range records {
		if record.ScheduledAt.Before(now) {
			if err := s.store.Delete(recordKey(record.Key)); err != nil {
				return removed, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("Pruned %d expired interview(s)", removed)
		if err := s.renumberLocked(); err != nil {
			return removed, err
		}
	}

	return removed, nil
}

// Renumber rewrites the dense 1..N rank of every record in ascending
// ScheduledAt order.
func (s *Service) Renumber() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renumberLocked()
}

// renumberLocked must run with the mutex held. A partial failure here
// corrupts the rank invariant, so it is reported instead of swallowed.
func (s *Service) renumberLocked() error {
	records, err := s.loadOrdered()
	if err != nil {
		return err
	}

	for i := range records {
		if records[i].Rank == i+1 {
			continue
		}
		records[i].Rank = i + 1
		if err := s.store.Set(recordKey(records[i].Key), &records[i]); err != nil {
			s.logger.Error("Renumbering failed at rank %d: %v", i+1, err)
			return fmt.Errorf("renumbering failed: %w: %v", ErrStoreUnavailable, err)
		}
	}

	return nil
}

// ListOrdered prunes expired records, then returns the surviving
// schedule in ascending time order with ranks 1..N.
func (s *Service) ListOrdered(now time.Time) ([]models.InterviewRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.pruneExpiredLocked(now); err != nil {
		return nil, err
	}

	return s.loadOrdered()
}

// Pending returns every record that has not been reminded yet, in
// ascending time order. The reminder scheduler applies its own window
// logic on top.
func (s *Service) Pending(now time.Time) ([]models.InterviewRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadOrdered()
	if err != nil {
		return nil, err
	}

	pending := make([]models.InterviewRecord, 0, len(records))
	for _, record := range records {
		if !record.Reminded {
			pending = append(pending, record)
		}
	}

	return pending, nil
}

// MarkReminded flips a record's reminded flag. The flag is monotonic:
// marking an already-reminded record is a no-op.
func (s *Service) MarkReminded(key uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var record models.InterviewRecord
	if err := s.store.Get(recordKey(key), &record); err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return fmt.Errorf("%w: key %d", ErrNotFound, key)
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if record.Reminded {
		return nil
	}

	record.Reminded = true
	if err := s.store.Set(recordKey(key), &record); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// loadOrdered reads every record and sorts by time, breaking ties with
// the stable key so the ordering is deterministic.
func (s *Service) loadOrdered() ([]models.InterviewRecord, error) {
	keys, err := s.store.List(recordPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	records := make([]models.InterviewRecord, 0, len(keys))
	for _, key := range keys {
		var record models.InterviewRecord
		if err := s.store.Get(key, &record); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].ScheduledAt.Equal(records[j].ScheduledAt) {
			return records[i].Key < records[j].Key
		}
		return records[i].ScheduledAt.Before(records[j].ScheduledAt)
	})

	return records, nil
}
