package reminder

import (
	"time"

	"interviewbot/pkg/interview"
	"interviewbot/pkg/logger"
	"interviewbot/pkg/models"
)

const (
	// NotifyWindow is the lead time before an interview at which the
	// reminder becomes due.
	NotifyWindow = 10 * time.Minute

	// GraceWindow is how far past the scheduled time a missed reminder
	// is still worth sending. Older records are marked reminded
	// without a notification.
	GraceWindow = 5 * time.Minute
)

// Notifier delivers reminder messages. Both calls are provided by the
// chat platform adapter.
type Notifier interface {
	// NotifyDirect sends a direct message to the interviewee.
	NotifyDirect(userID, text string) error
	// NotifyChannel mirrors a reminder into the operational channel.
	NotifyChannel(text string) error
}

// RenderFunc produces the reminder text for a record.
type RenderFunc func(record models.InterviewRecord) string

// Service periodically scans the schedule and dispatches reminders
type Service struct {
	interviews *interview.Service
	notifier   Notifier
	render     RenderFunc
	interval   time.Duration
	logger     *logger.Logger
	stopChan   chan struct{}
}

// New creates a new reminder service
func New(interviews *interview.Service, notifier Notifier, render RenderFunc, interval time.Duration) *Service {
	return &Service{
		interviews: interviews,
		notifier:   notifier,
		render:     render,
		interval:   interval,
		logger:     logger.New("reminder"),
		stopChan:   make(chan struct{}),
	}
}

// Start starts the reminder loop. Ticks run sequentially on one
// goroutine, so they never overlap.
func (s *Service) Start() {
	s.logger.Info("Starting reminder scheduler (interval %v, window %v)", s.interval, NotifyWindow)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Tick(time.Now())
			case <-s.stopChan:
				return
			}
		}
	}()
}

// Stop stops the reminder loop
func (s *Service) Stop() {
	s.logger.Info("Stopping reminder scheduler")
	close(s.stopChan)
}

// Tick processes one scan of the schedule. Each record is handled
// independently: a delivery failure for one never aborts the rest.
func (s *Service) Tick(now time.Time) {
	records, err := s.interviews.Pending(now)
	if err != nil {
		s.logger.Error("Failed to query pending interviews: %v", err)
		return
	}

	for _, record := range records {
		s.process(record, now)
	}
}

func (s *Service) process(record models.InterviewRecord, now time.Time) {
	lead := record.ScheduledAt.Sub(now)

	switch {
	case lead > NotifyWindow:
		// Not due yet
		return

	case lead < -GraceWindow:
		// Too stale to be useful; retire the record silently so it
		// is not revisited every tick.
		s.logger.Warn("Interview for %s at %v missed its reminder window, marking without notifying", record.UserID, record.ScheduledAt)
		if err := s.interviews.MarkReminded(record.Key); err != nil {
			s.logger.Error("Failed to mark interview %d reminded: %v", record.Key, err)
		}
		return
	}

	text := s.render(record)

	// The direct message is the user-facing obligation: if it fails
	// the record stays unmarked and the next tick retries.
	if err := s.notifier.NotifyDirect(record.UserID, text); err != nil {
		s.logger.Error("Failed to DM reminder to %s: %v", record.UserID, err)
		return
	}

	// Mirror is best-effort
	if err := s.notifier.NotifyChannel(text); err != nil {
		s.logger.Error("Failed to mirror reminder for %s: %v", record.UserID, err)
	}

	if err := s.interviews.MarkReminded(record.Key); err != nil {
		s.logger.Error("Failed to mark interview %d reminded: %v", record.Key, err)
	}
}
