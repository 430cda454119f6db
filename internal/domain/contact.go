package domain

import (
	"fmt"
	"strings"
	"time"
)

// Contact is the subset of a campaign contact this engine reads. The owning
// platform maintains the full record.
type Contact struct {
	ID                 string
	FirstName          string
	LastName           string
	MessageAddress     string
	QualificationScore int
	Notes              string
	Metadata           map[string]string
}

// ConversationStatus represents the automation state of a conversation.
type ConversationStatus string

const (
	ConversationStatusActive ConversationStatus = "active"
	// ConversationStatusHandoverPending is terminal for automation: no
	// further automated sends once a conversation reaches it.
	ConversationStatusHandoverPending ConversationStatus = "handover_pending"
	ConversationStatusClosed          ConversationStatus = "closed"
)

func (s ConversationStatus) String() string { return string(s) }

func (s ConversationStatus) IsValid() bool {
	switch s {
	case ConversationStatusActive, ConversationStatusHandoverPending, ConversationStatusClosed:
		return true
	}
	return false
}

func ParseConversationStatusFromString(s string) (ConversationStatus, error) {
	st := ConversationStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid conversation status %q", ErrValidation, s)
	}
	return st, nil
}

// Conversation is the transcript summary consumed by handover evaluation.
type Conversation struct {
	ID             string
	ContactID      string
	Status         ConversationStatus
	MessageCount   int
	StartedAt      time.Time
	GoalProgress   map[string]bool
	TranscriptText string
}
