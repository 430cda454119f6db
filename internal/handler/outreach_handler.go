package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/outreach-engine/internal/domain"
	"github.com/kursadbilgin/outreach-engine/internal/repository"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, scheduleID, contactID string, variables map[string]string) error
}

type HandoverEvaluator interface {
	Evaluate(ctx context.Context, contact *domain.Contact, rule domain.HandoverRule, conversationID string) (*domain.HandoverEvaluation, error)
}

type HandoverExecutor interface {
	Execute(ctx context.Context, contact *domain.Contact, recipients []domain.HandoverRecipient, conversationID, reason string, criteria []string) (bool, error)
}

type OutreachHandler struct {
	schedules  repository.ScheduleRepository
	attempts   repository.AttemptRepository
	contacts   repository.ContactRepository
	enrollment EnrollmentService
	evaluator  HandoverEvaluator
	executor   HandoverExecutor
}

func NewOutreachHandler(
	schedules repository.ScheduleRepository,
	attempts repository.AttemptRepository,
	contacts repository.ContactRepository,
	enrollment EnrollmentService,
	evaluator HandoverEvaluator,
	executor HandoverExecutor,
) (*OutreachHandler, error) {
	if schedules == nil || attempts == nil || contacts == nil {
		return nil, fmt.Errorf("schedule, attempt and contact repositories are required")
	}
	if enrollment == nil || evaluator == nil || executor == nil {
		return nil, fmt.Errorf("enrollment, evaluator and executor services are required")
	}

	return &OutreachHandler{
		schedules:  schedules,
		attempts:   attempts,
		contacts:   contacts,
		enrollment: enrollment,
		evaluator:  evaluator,
		executor:   executor,
	}, nil
}

func RegisterOutreachRoutes(
	router fiber.Router,
	schedules repository.ScheduleRepository,
	attempts repository.AttemptRepository,
	contacts repository.ContactRepository,
	enrollment EnrollmentService,
	evaluator HandoverEvaluator,
	executor HandoverExecutor,
) error {
	h, err := NewOutreachHandler(schedules, attempts, contacts, enrollment, evaluator, executor)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/schedules", h.CreateSchedule)
	v1.Get("/schedules", h.ListSchedules)
	v1.Get("/schedules/:id", h.GetSchedule)
	v1.Patch("/schedules/:id/active", h.SetScheduleActive)
	v1.Delete("/schedules/:id", h.DeleteSchedule)
	v1.Post("/schedules/:id/enrollments", h.EnrollContact)
	v1.Get("/schedules/:id/contacts/:contactId/attempts", h.ListAttempts)
	v1.Delete("/schedules/:id/contacts/:contactId/attempts", h.CancelAttempts)
	v1.Post("/handover/evaluate", h.EvaluateHandover)
	v1.Post("/handover/execute", h.ExecuteHandover)

	return nil
}

type scheduleStepRequest struct {
	AttemptNumber   int    `json:"attemptNumber"`
	TemplateID      string `json:"templateId"`
	DelayDays       int    `json:"delayDays"`
	DelayHours      int    `json:"delayHours"`
	SkipIfResponded bool   `json:"skipIfResponded"`
	SkipIfOpened    bool   `json:"skipIfOpened"`
	MaxAttempts     int    `json:"maxAttempts"`
}

type createScheduleRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Active      bool                  `json:"active"`
	Steps       []scheduleStepRequest `json:"steps"`
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

type enrollRequest struct {
	ContactID string            `json:"contactId"`
	Variables map[string]string `json:"variables"`
}

type handoverRuleRequest struct {
	QualificationScoreThreshold int                `json:"qualificationScoreThreshold"`
	KeywordTriggers             []string           `json:"keywordTriggers"`
	GoalCompletionRequired      []string           `json:"goalCompletionRequired"`
	ConversationLengthThreshold int                `json:"conversationLengthThreshold"`
	TimeThresholdSeconds        int                `json:"timeThresholdSeconds"`
	Recipients                  []recipientRequest `json:"recipients"`
}

type recipientRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Priority int    `json:"priority"`
}

type evaluateHandoverRequest struct {
	ContactID      string              `json:"contactId"`
	ConversationID string              `json:"conversationId"`
	Rule           handoverRuleRequest `json:"rule"`
}

type executeHandoverRequest struct {
	ContactID         string             `json:"contactId"`
	ConversationID    string             `json:"conversationId"`
	Reason            string             `json:"reason"`
	TriggeredCriteria []string           `json:"triggeredCriteria"`
	Recipients        []recipientRequest `json:"recipients"`
}

type scheduleResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Active      bool                  `json:"active"`
	Steps       []scheduleStepRequest `json:"steps"`
	CreatedAt   time.Time             `json:"createdAt,omitempty"`
	UpdatedAt   time.Time             `json:"updatedAt,omitempty"`
}

type attemptResponse struct {
	ID                 string     `json:"id"`
	ScheduleID         string     `json:"scheduleId"`
	ContactID          string     `json:"contactId"`
	AttemptNumber      int        `json:"attemptNumber"`
	TemplateID         string     `json:"templateId"`
	ScheduledFor       time.Time  `json:"scheduledFor"`
	Status             string     `json:"status"`
	SentAt             *time.Time `json:"sentAt,omitempty"`
	TransportMessageID *string    `json:"transportMessageId,omitempty"`
	ErrorMessage       *string    `json:"errorMessage,omitempty"`
}

type evaluationResponse struct {
	ShouldHandover    bool     `json:"shouldHandover"`
	Reason            string   `json:"reason,omitempty"`
	Score             int      `json:"score"`
	TriggeredCriteria []string `json:"triggeredCriteria,omitempty"`
	MatchedKeywords   []string `json:"matchedKeywords,omitempty"`
}

func (h *OutreachHandler) CreateSchedule(c *fiber.Ctx) error {
	var req createScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	schedule := requestToDomainSchedule(req)
	if err := h.schedules.Create(c.Context(), schedule); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toScheduleResponse(schedule))
}

func (h *OutreachHandler) ListSchedules(c *fiber.Ctx) error {
	schedules, err := h.schedules.List(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]scheduleResponse, 0, len(schedules))
	for i := range schedules {
		responses = append(responses, toScheduleResponse(&schedules[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": responses})
}

func (h *OutreachHandler) GetSchedule(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	schedule, err := h.schedules.GetByID(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toScheduleResponse(schedule))
}

func (h *OutreachHandler) SetScheduleActive(c *fiber.Ctx) error {
	var req setActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	id := strings.TrimSpace(c.Params("id"))
	if err := h.schedules.SetActive(c.Context(), id, req.Active); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"scheduleId": id,
		"active":     req.Active,
	})
}

func (h *OutreachHandler) DeleteSchedule(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.schedules.Delete(c.Context(), id); err != nil {
		return toHTTPError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *OutreachHandler) EnrollContact(c *fiber.Ctx) error {
	var req enrollRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	scheduleID := strings.TrimSpace(c.Params("id"))
	if err := h.enrollment.Enroll(c.Context(), scheduleID, strings.TrimSpace(req.ContactID), req.Variables); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"scheduleId": scheduleID,
		"contactId":  strings.TrimSpace(req.ContactID),
	})
}

func (h *OutreachHandler) ListAttempts(c *fiber.Ctx) error {
	scheduleID := strings.TrimSpace(c.Params("id"))
	contactID := strings.TrimSpace(c.Params("contactId"))

	attempts, err := h.attempts.ListForContact(c.Context(), scheduleID, contactID)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]attemptResponse, 0, len(attempts))
	for i := range attempts {
		responses = append(responses, toAttemptResponse(&attempts[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": responses})
}

func (h *OutreachHandler) CancelAttempts(c *fiber.Ctx) error {
	scheduleID := strings.TrimSpace(c.Params("id"))
	contactID := strings.TrimSpace(c.Params("contactId"))

	cancelled, err := h.attempts.CancelForContact(c.Context(), scheduleID, contactID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"scheduleId": scheduleID,
		"contactId":  contactID,
		"cancelled":  cancelled,
	})
}

func (h *OutreachHandler) EvaluateHandover(c *fiber.Ctx) error {
	var req evaluateHandoverRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	contact, err := h.contacts.GetByID(c.Context(), strings.TrimSpace(req.ContactID))
	if err != nil {
		return toHTTPError(err)
	}

	evaluation, err := h.evaluator.Evaluate(c.Context(), contact, requestToDomainRule(req.Rule), strings.TrimSpace(req.ConversationID))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(evaluationResponse{
		ShouldHandover:    evaluation.ShouldHandover,
		Reason:            evaluation.Reason,
		Score:             evaluation.Score,
		TriggeredCriteria: evaluation.TriggeredCriteria,
		MatchedKeywords:   evaluation.MatchedKeywords,
	})
}

func (h *OutreachHandler) ExecuteHandover(c *fiber.Ctx) error {
	var req executeHandoverRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	contact, err := h.contacts.GetByID(c.Context(), strings.TrimSpace(req.ContactID))
	if err != nil {
		return toHTTPError(err)
	}

	recipients := make([]domain.HandoverRecipient, 0, len(req.Recipients))
	for _, r := range req.Recipients {
		recipients = append(recipients, domain.HandoverRecipient{
			Name:     r.Name,
			Email:    r.Email,
			Role:     r.Role,
			Priority: r.Priority,
		})
	}

	complete, err := h.executor.Execute(c.Context(), contact, recipients, strings.TrimSpace(req.ConversationID), req.Reason, req.TriggeredCriteria)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"contactId": contact.ID,
		"complete":  complete,
	})
}

func requestToDomainSchedule(req createScheduleRequest) *domain.Schedule {
	steps := make([]domain.AttemptTemplate, 0, len(req.Steps))
	for _, step := range req.Steps {
		steps = append(steps, domain.AttemptTemplate{
			AttemptNumber: step.AttemptNumber,
			TemplateID:    strings.TrimSpace(step.TemplateID),
			DelayDays:     step.DelayDays,
			DelayHours:    step.DelayHours,
			Conditions: domain.AttemptConditions{
				SkipIfResponded: step.SkipIfResponded,
				SkipIfOpened:    step.SkipIfOpened,
				MaxAttempts:     step.MaxAttempts,
			},
		})
	}

	return &domain.Schedule{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Active:      req.Active,
		Steps:       steps,
	}
}

func requestToDomainRule(req handoverRuleRequest) domain.HandoverRule {
	recipients := make([]domain.HandoverRecipient, 0, len(req.Recipients))
	for _, r := range req.Recipients {
		recipients = append(recipients, domain.HandoverRecipient{
			Name:     r.Name,
			Email:    r.Email,
			Role:     r.Role,
			Priority: r.Priority,
		})
	}

	return domain.HandoverRule{
		QualificationScoreThreshold: req.QualificationScoreThreshold,
		KeywordTriggers:             req.KeywordTriggers,
		GoalCompletionRequired:      req.GoalCompletionRequired,
		ConversationLengthThreshold: req.ConversationLengthThreshold,
		TimeThresholdSeconds:        req.TimeThresholdSeconds,
		Recipients:                  recipients,
	}
}

func toScheduleResponse(s *domain.Schedule) scheduleResponse {
	if s == nil {
		return scheduleResponse{}
	}

	steps := make([]scheduleStepRequest, 0, len(s.Steps))
	for _, step := range s.Steps {
		steps = append(steps, scheduleStepRequest{
			AttemptNumber:   step.AttemptNumber,
			TemplateID:      step.TemplateID,
			DelayDays:       step.DelayDays,
			DelayHours:      step.DelayHours,
			SkipIfResponded: step.Conditions.SkipIfResponded,
			SkipIfOpened:    step.Conditions.SkipIfOpened,
			MaxAttempts:     step.Conditions.MaxAttempts,
		})
	}

	return scheduleResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Active:      s.Active,
		Steps:       steps,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toAttemptResponse(a *domain.Attempt) attemptResponse {
	if a == nil {
		return attemptResponse{}
	}

	return attemptResponse{
		ID:                 a.ID,
		ScheduleID:         a.ScheduleID,
		ContactID:          a.ContactID,
		AttemptNumber:      a.AttemptNumber,
		TemplateID:         a.TemplateID,
		ScheduledFor:       a.ScheduledFor,
		Status:             a.Status.String(),
		SentAt:             a.SentAt,
		TransportMessageID: a.TransportMessageID,
		ErrorMessage:       a.ErrorMessage,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConfiguration):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		return err
	}
}
