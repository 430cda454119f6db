package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kursadbilgin/outreach-engine/internal/domain"
	"github.com/kursadbilgin/outreach-engine/internal/observability"
	"github.com/kursadbilgin/outreach-engine/internal/repository"
	"go.uber.org/zap"
)

// HandoverEvaluator decides whether an interaction should escalate to a
// human. Evaluation is pure over its inputs: fixed inputs always produce the
// same result, with the reference time injectable for the elapsed-time
// criterion.
type HandoverEvaluator struct {
	conversations repository.ConversationRepository
	logger        *zap.Logger
	metrics       *observability.Metrics
	now           func() time.Time
}

func NewHandoverEvaluator(conversations repository.ConversationRepository, logger *zap.Logger) (*HandoverEvaluator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HandoverEvaluator{
		conversations: conversations,
		logger:        logger,
		now:           time.Now,
	}, nil
}

func (e *HandoverEvaluator) SetMetrics(metrics *observability.Metrics) {
	if e == nil {
		return
	}
	e.metrics = metrics
}

// Evaluate checks the rule's criteria against the contact and, when a
// conversation id is supplied, that conversation. Criteria are OR'd: any
// single firing criterion triggers handover. Zero thresholds disable their
// criterion. Boundary comparisons are inclusive.
func (e *HandoverEvaluator) Evaluate(ctx context.Context, contact *domain.Contact, rule domain.HandoverRule, conversationID string) (*domain.HandoverEvaluation, error) {
	if contact == nil {
		return nil, fmt.Errorf("%w: contact is required", domain.ErrValidation)
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	var conversation *domain.Conversation
	if strings.TrimSpace(conversationID) != "" {
		if e.conversations == nil {
			return nil, fmt.Errorf("%w: conversation lookup is not configured", domain.ErrConfiguration)
		}
		loaded, err := e.conversations.GetByID(ctx, conversationID)
		if err != nil {
			return nil, fmt.Errorf("failed to load conversation %s: %w", conversationID, err)
		}
		conversation = loaded
	}

	evaluation := &domain.HandoverEvaluation{
		Score: contact.QualificationScore,
	}

	if rule.QualificationScoreThreshold > 0 && contact.QualificationScore >= rule.QualificationScoreThreshold {
		evaluation.TriggeredCriteria = append(evaluation.TriggeredCriteria, domain.CriterionQualificationScore)
	}

	if matched := matchKeywords(rule.KeywordTriggers, keywordSearchText(contact, conversation)); len(matched) > 0 {
		evaluation.TriggeredCriteria = append(evaluation.TriggeredCriteria, domain.CriterionKeywordMatch)
		evaluation.MatchedKeywords = matched
	}

	if conversation != nil {
		if len(rule.GoalCompletionRequired) > 0 && allGoalsComplete(rule.GoalCompletionRequired, conversation.GoalProgress) {
			evaluation.TriggeredCriteria = append(evaluation.TriggeredCriteria, domain.CriterionGoalCompletion)
		}
		if rule.ConversationLengthThreshold > 0 && conversation.MessageCount >= rule.ConversationLengthThreshold {
			evaluation.TriggeredCriteria = append(evaluation.TriggeredCriteria, domain.CriterionConversationLength)
		}
		if rule.TimeThresholdSeconds > 0 && !conversation.StartedAt.IsZero() {
			elapsed := e.now().Sub(conversation.StartedAt)
			if elapsed >= time.Duration(rule.TimeThresholdSeconds)*time.Second {
				evaluation.TriggeredCriteria = append(evaluation.TriggeredCriteria, domain.CriterionTimeThreshold)
			}
		}
	}

	if len(evaluation.TriggeredCriteria) > 0 {
		evaluation.ShouldHandover = true
		evaluation.Reason = "handover triggered by: " + strings.Join(evaluation.TriggeredCriteria, ", ")
	}

	e.metrics.IncHandoverEvaluation(evaluation.ShouldHandover)
	if evaluation.ShouldHandover {
		e.logger.Info("handover criteria met",
			zap.String("contactId", contact.ID),
			zap.Strings("criteria", evaluation.TriggeredCriteria),
			zap.Int("score", evaluation.Score),
		)
	}

	return evaluation, nil
}

// keywordSearchText concatenates the contact's notes, metadata values in key
// order, and the conversation transcript into one searchable haystack.
func keywordSearchText(contact *domain.Contact, conversation *domain.Conversation) string {
	parts := make([]string, 0, 2+len(contact.Metadata))
	parts = append(parts, contact.Notes)

	keys := make([]string, 0, len(contact.Metadata))
	for k := range contact.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, contact.Metadata[k])
	}

	if conversation != nil {
		parts = append(parts, conversation.TranscriptText)
	}

	return strings.ToLower(strings.Join(parts, "\n"))
}

func matchKeywords(keywords []string, haystack string) []string {
	var matched []string
	for _, keyword := range keywords {
		trimmed := strings.TrimSpace(keyword)
		if trimmed == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(trimmed)) {
			matched = append(matched, keyword)
		}
	}
	return matched
}

func allGoalsComplete(required []string, progress map[string]bool) bool {
	for _, goal := range required {
		if !progress[goal] {
			return false
		}
	}
	return true
}
