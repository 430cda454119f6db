package repository

import (
	"encoding/json"
	"time"

	"github.com/kursadbilgin/outreach-engine/internal/domain"
)

// ScheduleModel is the persistence model for the outreach_schedules table.
type ScheduleModel struct {
	ID          string `gorm:"type:varchar(64);primaryKey"`
	Name        string `gorm:"type:varchar(200);not null"`
	Description string `gorm:"type:text"`
	Active      bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ScheduleModel) TableName() string {
	return "outreach_schedules"
}

// ScheduleStepModel is the persistence model for schedule_steps.
type ScheduleStepModel struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	ScheduleID      string `gorm:"type:varchar(64);not null;index"`
	AttemptNumber   int    `gorm:"not null"`
	TemplateID      string `gorm:"type:varchar(128);not null"`
	DelayDays       int    `gorm:"not null;default:0"`
	DelayHours      int    `gorm:"not null;default:0"`
	SkipIfResponded bool   `gorm:"not null;default:false"`
	SkipIfOpened    bool   `gorm:"not null;default:false"`
	MaxAttempts     int    `gorm:"not null;default:0"`
	CreatedAt       time.Time
}

func (ScheduleStepModel) TableName() string {
	return "schedule_steps"
}

// AttemptModel is the persistence model for outreach_attempts.
type AttemptModel struct {
	ID                 string               `gorm:"type:varchar(255);primaryKey"`
	ScheduleID         string               `gorm:"type:varchar(64);not null"`
	ContactID          string               `gorm:"type:varchar(64);not null"`
	AttemptNumber      int                  `gorm:"not null"`
	TemplateID         string               `gorm:"type:varchar(128);not null"`
	ScheduledFor       time.Time            `gorm:"type:timestamptz;not null"`
	Status             domain.AttemptStatus `gorm:"type:varchar(20);not null"`
	Variables          string               `gorm:"type:text"`
	SentAt             *time.Time           `gorm:"type:timestamptz"`
	TransportMessageID *string              `gorm:"type:varchar(255)"`
	ErrorMessage       *string              `gorm:"type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (AttemptModel) TableName() string {
	return "outreach_attempts"
}

// ActivityEventModel is the persistence model for activity_events.
type ActivityEventModel struct {
	ID        string `gorm:"type:varchar(64);primaryKey"`
	EventType string `gorm:"type:varchar(64);not null"`
	Message   string `gorm:"type:text;not null"`
	Source    string `gorm:"type:varchar(64);not null"`
	Metadata  string `gorm:"type:text"`
	CreatedAt time.Time
}

func (ActivityEventModel) TableName() string {
	return "activity_events"
}

// ContactModel is the persistence model for contacts.
type ContactModel struct {
	ID                 string `gorm:"type:varchar(64);primaryKey"`
	FirstName          string `gorm:"type:varchar(100)"`
	LastName           string `gorm:"type:varchar(100)"`
	MessageAddress     string `gorm:"type:varchar(255)"`
	QualificationScore int    `gorm:"not null;default:0"`
	Notes              string `gorm:"type:text"`
	Metadata           string `gorm:"type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (ContactModel) TableName() string {
	return "contacts"
}

// ConversationModel is the persistence model for conversations.
type ConversationModel struct {
	ID             string                    `gorm:"type:varchar(64);primaryKey"`
	ContactID      string                    `gorm:"type:varchar(64);not null;index"`
	Status         domain.ConversationStatus `gorm:"type:varchar(32);not null"`
	MessageCount   int                       `gorm:"not null;default:0"`
	StartedAt      time.Time                 `gorm:"type:timestamptz;not null"`
	GoalProgress   string                    `gorm:"type:text"`
	TranscriptText string                    `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (ConversationModel) TableName() string {
	return "conversations"
}

func scheduleModelFromDomain(s *domain.Schedule) (*ScheduleModel, []ScheduleStepModel) {
	if s == nil {
		return nil, nil
	}

	model := &ScheduleModel{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Active:      s.Active,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}

	steps := make([]ScheduleStepModel, 0, len(s.Steps))
	for _, step := range s.Steps {
		steps = append(steps, ScheduleStepModel{
			ScheduleID:      s.ID,
			AttemptNumber:   step.AttemptNumber,
			TemplateID:      step.TemplateID,
			DelayDays:       step.DelayDays,
			DelayHours:      step.DelayHours,
			SkipIfResponded: step.Conditions.SkipIfResponded,
			SkipIfOpened:    step.Conditions.SkipIfOpened,
			MaxAttempts:     step.Conditions.MaxAttempts,
		})
	}

	return model, steps
}

func scheduleModelToDomain(m *ScheduleModel, steps []ScheduleStepModel) *domain.Schedule {
	if m == nil {
		return nil
	}

	schedule := &domain.Schedule{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Active:      m.Active,
		Steps:       make([]domain.AttemptTemplate, 0, len(steps)),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	for _, step := range steps {
		schedule.Steps = append(schedule.Steps, domain.AttemptTemplate{
			AttemptNumber: step.AttemptNumber,
			TemplateID:    step.TemplateID,
			DelayDays:     step.DelayDays,
			DelayHours:    step.DelayHours,
			Conditions: domain.AttemptConditions{
				SkipIfResponded: step.SkipIfResponded,
				SkipIfOpened:    step.SkipIfOpened,
				MaxAttempts:     step.MaxAttempts,
			},
		})
	}

	return schedule
}

func attemptModelFromDomain(a *domain.Attempt) *AttemptModel {
	if a == nil {
		return nil
	}

	return &AttemptModel{
		ID:                 a.ID,
		ScheduleID:         a.ScheduleID,
		ContactID:          a.ContactID,
		AttemptNumber:      a.AttemptNumber,
		TemplateID:         a.TemplateID,
		ScheduledFor:       a.ScheduledFor,
		Status:             a.Status,
		Variables:          marshalStringMap(a.Variables),
		SentAt:             a.SentAt,
		TransportMessageID: a.TransportMessageID,
		ErrorMessage:       a.ErrorMessage,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func attemptModelToDomain(m *AttemptModel) *domain.Attempt {
	if m == nil {
		return nil
	}

	return &domain.Attempt{
		ID:                 m.ID,
		ScheduleID:         m.ScheduleID,
		ContactID:          m.ContactID,
		AttemptNumber:      m.AttemptNumber,
		TemplateID:         m.TemplateID,
		ScheduledFor:       m.ScheduledFor,
		Status:             m.Status,
		Variables:          unmarshalStringMap(m.Variables),
		SentAt:             m.SentAt,
		TransportMessageID: m.TransportMessageID,
		ErrorMessage:       m.ErrorMessage,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func activityModelFromDomain(e *domain.ActivityEvent) *ActivityEventModel {
	if e == nil {
		return nil
	}

	return &ActivityEventModel{
		ID:        e.ID,
		EventType: e.EventType,
		Message:   e.Message,
		Source:    e.Source,
		Metadata:  marshalStringMap(e.Metadata),
		CreatedAt: e.CreatedAt,
	}
}

func contactModelToDomain(m *ContactModel) *domain.Contact {
	if m == nil {
		return nil
	}

	return &domain.Contact{
		ID:                 m.ID,
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		MessageAddress:     m.MessageAddress,
		QualificationScore: m.QualificationScore,
		Notes:              m.Notes,
		Metadata:           unmarshalStringMap(m.Metadata),
	}
}

func conversationModelToDomain(m *ConversationModel) *domain.Conversation {
	if m == nil {
		return nil
	}

	return &domain.Conversation{
		ID:             m.ID,
		ContactID:      m.ContactID,
		Status:         m.Status,
		MessageCount:   m.MessageCount,
		StartedAt:      m.StartedAt,
		GoalProgress:   unmarshalBoolMap(m.GoalProgress),
		TranscriptText: m.TranscriptText,
	}
}

func marshalStringMap(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(raw)
}

func unmarshalStringMap(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	return m
}

func unmarshalBoolMap(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	var m map[string]bool
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	return m
}
