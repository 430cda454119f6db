package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

// Handover criterion names reported in HandoverEvaluation.TriggeredCriteria.
const (
	CriterionQualificationScore = "qualification_score"
	CriterionKeywordMatch       = "keyword_match"
	CriterionGoalCompletion     = "goal_completion"
	CriterionConversationLength = "conversation_length"
	CriterionTimeThreshold      = "time_threshold"
)

// HandoverRecipient is a human notified when an interaction escalates.
type HandoverRecipient struct {
	Name     string
	Email    string
	Role     string
	Priority int
}

// HandoverRule is an immutable snapshot of a campaign's escalation
// configuration. Zero thresholds disable the corresponding criterion.
type HandoverRule struct {
	QualificationScoreThreshold int
	KeywordTriggers             []string
	GoalCompletionRequired      []string
	ConversationLengthThreshold int
	TimeThresholdSeconds        int
	Recipients                  []HandoverRecipient
}

func (r HandoverRule) Validate() error {
	if r.QualificationScoreThreshold < 0 {
		return fmt.Errorf("%w: qualification score threshold must not be negative", ErrConfiguration)
	}
	if r.ConversationLengthThreshold < 0 {
		return fmt.Errorf("%w: conversation length threshold must not be negative", ErrConfiguration)
	}
	if r.TimeThresholdSeconds < 0 {
		return fmt.Errorf("%w: time threshold must not be negative", ErrConfiguration)
	}
	for i, keyword := range r.KeywordTriggers {
		if strings.TrimSpace(keyword) == "" {
			return fmt.Errorf("%w: keyword trigger %d is empty", ErrConfiguration, i+1)
		}
	}
	for i, recipient := range r.Recipients {
		if _, err := mail.ParseAddress(recipient.Email); err != nil {
			return fmt.Errorf("%w: recipient %d has an invalid email address", ErrConfiguration, i+1)
		}
	}
	return nil
}

// HandoverEvaluation is the transient result of evaluating a rule against a
// contact and, optionally, a conversation. It is never persisted.
type HandoverEvaluation struct {
	ShouldHandover    bool
	Reason            string
	Score             int
	TriggeredCriteria []string
	MatchedKeywords   []string
}
