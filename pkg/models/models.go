package models

import (
	"time"
)

// InterviewRecord represents a scheduled interview.
//
// Key is the immutable storage identity assigned at creation and never
// reused. Rank is the 1-based chronological position shown to users; it
// is recomputed after every insert and delete, so it must never be used
// to address a record across mutations.
type InterviewRecord struct {
	Key         uint64    `json:"key"`
	Rank        int       `json:"rank"`
	UserID      string    `json:"user_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reminded    bool      `json:"reminded"`
}

// Ballot represents the voting state attached to one forwarded
// interview request message.
type Ballot struct {
	MessageID        string    `json:"message_id"`
	ChannelID        string    `json:"channel_id"`
	RequesterID      string    `json:"requester_id"`
	RequestText      string    `json:"request_text"`
	SummaryMessageID string    `json:"summary_message_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Voter is one user currently holding a reaction on a tracked message.
type Voter struct {
	ID  string `json:"id"`
	Bot bool   `json:"bot"`
}

// Tally is the derived summary of a ballot's current voter sets.
// Bot accounts are already excluded from both sides.
type Tally struct {
	Approve []string `json:"approve"`
	Reject  []string `json:"reject"`
}
