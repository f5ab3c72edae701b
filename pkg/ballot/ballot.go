// Package ballot tracks approval voting on forwarded interview
// requests. Each tracked message carries two mutually exclusive
// reaction choices; the package keeps a published tally in sync with
// the live reaction state.
package ballot

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"interviewbot/pkg/logger"
	"interviewbot/pkg/models"
	"interviewbot/pkg/storage"
)

const (
	// EmojiApprove marks a voter as available for the interview.
	EmojiApprove = "✅"
	// EmojiReject marks a voter as unavailable.
	EmojiReject = "❌"
	// EmojiReceived acknowledges the original request message.
	EmojiReceived = "📩"
)

const ballotPrefix = "ballot:"

// requestPattern recognizes the date/time phrases that make a message
// in the request channel an interview request: clock expressions
// (half/full-width digits), today/tomorrow, and the "anytime" forms.
var requestPattern = regexp.MustCompile(`([０-９\d]{1,2}時|[０-９\d]{1,2}じ|今日|明日|いつでも|何時でも|なんじでも|今から|いまから)`)

// Qualifies reports whether a request-channel message should be
// forwarded for voting.
func Qualifies(content string) bool {
	return requestPattern.MatchString(content)
}

// Messenger is the chat-platform surface the aggregator depends on.
// ReactionVoters must return the authoritative current holders of a
// reaction, bots included; filtering happens here.
type Messenger interface {
	RemoveReaction(channelID, messageID, emoji, userID string) error
	ReactionVoters(channelID, messageID, emoji string) ([]models.Voter, error)
	SendTally(requesterID, requestText string, tally models.Tally) (messageID string, err error)
	EditTally(messageID, requesterID, requestText string, tally models.Tally) error
}

// Service provides ballot tracking and tally publication
type Service struct {
	store     *storage.Store
	messenger Messenger
	logger    *logger.Logger

	// Reaction events arrive on separate goroutines; ballot updates
	// are read-modify-write, so they run one at a time.
	mu sync.Mutex
}

// New creates a new ballot service
func New(store *storage.Store, messenger Messenger) *Service {
	return &Service{
		store:     store,
		messenger: messenger,
		logger:    logger.New("ballot"),
	}
}

func ballotKey(messageID string) string {
	return ballotPrefix + messageID
}

// Track registers a forwarded request message for vote aggregation.
// Callers must only invoke this after the forward send succeeded, so a
// failed send never leaves an orphaned ballot.
func (s *Service) Track(channelID, messageID, requesterID, requestText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &models.Ballot{
		MessageID:   messageID,
		ChannelID:   channelID,
		RequesterID: requesterID,
		RequestText: requestText,
		CreatedAt:   time.Now(),
	}

	if err := s.store.Set(ballotKey(messageID), b); err != nil {
		return fmt.Errorf("failed to track ballot: %w", err)
	}

	s.logger.Info("Tracking ballot %s for requester %s", messageID, requesterID)
	return nil
}

// Get returns the ballot tracked for a message, or nil when the
// message is not tracked.
func (s *Service) Get(messageID string) (*models.Ballot, error) {
	var b models.Ballot
	err := s.store.Get(ballotKey(messageID), &b)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load ballot: %w", err)
	}
	return &b, nil
}

// HandleReactionAdd processes a voter adding one of the two choices.
// The opposite choice, if the voter holds it, is retracted from the
// message itself so the visible reactions and the tally agree.
func (s *Service) HandleReactionAdd(messageID, userID, emoji string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.Get(messageID)
	if err != nil {
		return err
	}
	if b == nil {
		return nil
	}

	var opposite string
	switch emoji {
	case EmojiApprove:
		opposite = EmojiReject
	case EmojiReject:
		opposite = EmojiApprove
	default:
		return nil
	}

	// Retraction failure is tolerable: the next publish re-reads the
	// authoritative reaction state anyway.
	if err := s.messenger.RemoveReaction(b.ChannelID, messageID, opposite, userID); err != nil {
		s.logger.Warn("Failed to retract %s from %s on ballot %s: %v", opposite, userID, messageID, err)
	}

	return s.publish(b)
}

// HandleReactionRemove processes a voter withdrawing a choice.
func (s *Service) HandleReactionRemove(messageID, userID, emoji string) error {
	if emoji != EmojiApprove && emoji != EmojiReject {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.Get(messageID)
	if err != nil {
		return err
	}
	if b == nil {
		return nil
	}

	return s.publish(b)
}

// publish recomputes the tally from the live reaction state and
// upserts the summary message: created once, edited in place after.
func (s *Service) publish(b *models.Ballot) error {
	tally, err := s.currentTally(b)
	if err != nil {
		return err
	}

	if b.SummaryMessageID == "" {
		summaryID, err := s.messenger.SendTally(b.RequesterID, b.RequestText, tally)
		if err != nil {
			return fmt.Errorf("failed to publish tally for ballot %s: %w", b.MessageID, err)
		}

		b.SummaryMessageID = summaryID
		if err := s.store.Set(ballotKey(b.MessageID), b); err != nil {
			return fmt.Errorf("failed to save summary reference: %w", err)
		}
		return nil
	}

	if err := s.messenger.EditTally(b.SummaryMessageID, b.RequesterID, b.RequestText, tally); err != nil {
		return fmt.Errorf("failed to update tally for ballot %s: %w", b.MessageID, err)
	}
	return nil
}

// currentTally re-reads both reaction sets in full, dropping bot
// accounts. No incremental counting: the reaction surface is the
// single source of truth.
func (s *Service) currentTally(b *models.Ballot) (models.Tally, error) {
	var tally models.Tally

	for _, side := range []struct {
		emoji string
		dst   *[]string
	}{
		{EmojiApprove, &tally.Approve},
		{EmojiReject, &tally.Reject},
	} {
		voters, err := s.messenger.ReactionVoters(b.ChannelID, b.MessageID, side.emoji)
		if err != nil {
			return models.Tally{}, fmt.Errorf("failed to read %s voters for ballot %s: %w", side.emoji, b.MessageID, err)
		}
		for _, voter := range voters {
			if voter.Bot {
				continue
			}
			*side.dst = append(*side.dst, voter.ID)
		}
	}

	return tally, nil
}
