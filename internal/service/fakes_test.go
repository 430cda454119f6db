package service

import (
	"context"
	"time"

	"github.com/kursadbilgin/outreach-engine/internal/domain"
	"github.com/kursadbilgin/outreach-engine/internal/provider"
	"github.com/kursadbilgin/outreach-engine/internal/queue"
)

type fakeScheduleRepo struct {
	createFn    func(ctx context.Context, s *domain.Schedule) error
	getByIDFn   func(ctx context.Context, id string) (*domain.Schedule, error)
	listFn      func(ctx context.Context) ([]domain.Schedule, error)
	setActiveFn func(ctx context.Context, id string, active bool) error
	deleteFn    func(ctx context.Context, id string) error
}

func (f *fakeScheduleRepo) Create(ctx context.Context, s *domain.Schedule) error {
	if f.createFn != nil {
		return f.createFn(ctx, s)
	}
	return nil
}

func (f *fakeScheduleRepo) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeScheduleRepo) List(ctx context.Context) ([]domain.Schedule, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeScheduleRepo) SetActive(ctx context.Context, id string, active bool) error {
	if f.setActiveFn != nil {
		return f.setActiveFn(ctx, id, active)
	}
	return nil
}

func (f *fakeScheduleRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeAttemptRepo struct {
	createBatchFn      func(ctx context.Context, attempts []*domain.Attempt) error
	getByIDFn          func(ctx context.Context, id string) (*domain.Attempt, error)
	getDueFn           func(ctx context.Context, now time.Time, limit int) ([]domain.Attempt, error)
	markSentFn         func(ctx context.Context, id string, sentAt time.Time, transportMessageID string) error
	markFailedFn       func(ctx context.Context, id string, errorMessage string) error
	markSkippedFn      func(ctx context.Context, id string) error
	countSentFn        func(ctx context.Context, scheduleID, contactID string) (int64, error)
	cancelForContactFn func(ctx context.Context, scheduleID, contactID string) (int64, error)
	listForContactFn   func(ctx context.Context, scheduleID, contactID string) ([]domain.Attempt, error)
}

func (f *fakeAttemptRepo) CreateBatch(ctx context.Context, attempts []*domain.Attempt) error {
	if f.createBatchFn != nil {
		return f.createBatchFn(ctx, attempts)
	}
	return nil
}

func (f *fakeAttemptRepo) GetByID(ctx context.Context, id string) (*domain.Attempt, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAttemptRepo) GetDue(ctx context.Context, now time.Time, limit int) ([]domain.Attempt, error) {
	if f.getDueFn != nil {
		return f.getDueFn(ctx, now, limit)
	}
	return nil, nil
}

func (f *fakeAttemptRepo) MarkSent(ctx context.Context, id string, sentAt time.Time, transportMessageID string) error {
	if f.markSentFn != nil {
		return f.markSentFn(ctx, id, sentAt, transportMessageID)
	}
	return nil
}

func (f *fakeAttemptRepo) MarkFailed(ctx context.Context, id string, errorMessage string) error {
	if f.markFailedFn != nil {
		return f.markFailedFn(ctx, id, errorMessage)
	}
	return nil
}

func (f *fakeAttemptRepo) MarkSkipped(ctx context.Context, id string) error {
	if f.markSkippedFn != nil {
		return f.markSkippedFn(ctx, id)
	}
	return nil
}

func (f *fakeAttemptRepo) CountSent(ctx context.Context, scheduleID, contactID string) (int64, error) {
	if f.countSentFn != nil {
		return f.countSentFn(ctx, scheduleID, contactID)
	}
	return 0, nil
}

func (f *fakeAttemptRepo) CancelForContact(ctx context.Context, scheduleID, contactID string) (int64, error) {
	if f.cancelForContactFn != nil {
		return f.cancelForContactFn(ctx, scheduleID, contactID)
	}
	return 0, nil
}

func (f *fakeAttemptRepo) ListForContact(ctx context.Context, scheduleID, contactID string) ([]domain.Attempt, error) {
	if f.listForContactFn != nil {
		return f.listForContactFn(ctx, scheduleID, contactID)
	}
	return nil, nil
}

type fakeContactRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.Contact, error)
}

func (f *fakeContactRepo) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

type fakeConversationRepo struct {
	getByIDFn      func(ctx context.Context, id string) (*domain.Conversation, error)
	updateStatusFn func(ctx context.Context, id string, status domain.ConversationStatus) error
}

func (f *fakeConversationRepo) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeConversationRepo) UpdateStatus(ctx context.Context, id string, status domain.ConversationStatus) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, status)
	}
	return nil
}

type fakeActivityRepo struct {
	recordFn func(ctx context.Context, e *domain.ActivityEvent) error
}

func (f *fakeActivityRepo) Record(ctx context.Context, e *domain.ActivityEvent) error {
	if f.recordFn != nil {
		return f.recordFn(ctx, e)
	}
	return nil
}

type fakeRenderer struct {
	renderFn func(ctx context.Context, templateID string, variables map[string]string) (*provider.RenderedMessage, error)
}

func (f *fakeRenderer) Render(ctx context.Context, templateID string, variables map[string]string) (*provider.RenderedMessage, error) {
	if f.renderFn != nil {
		return f.renderFn(ctx, templateID, variables)
	}
	return &provider.RenderedMessage{Subject: "subject", HTML: "<p>body</p>", Text: "body"}, nil
}

type fakeTransport struct {
	sendFn func(ctx context.Context, msg provider.OutboundMessage) (*provider.SendResult, error)
}

func (f *fakeTransport) Send(ctx context.Context, msg provider.OutboundMessage) (*provider.SendResult, error) {
	if f.sendFn != nil {
		return f.sendFn(ctx, msg)
	}
	return &provider.SendResult{StatusCode: 200, MessageID: "msg-1"}, nil
}

type fakeRateLimiter struct {
	allowFn func(ctx context.Context, channel string) (bool, error)
	waitFn  func(ctx context.Context, channel string) error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, channel string) (bool, error) {
	if f.allowFn != nil {
		return f.allowFn(ctx, channel)
	}
	return true, nil
}

func (f *fakeRateLimiter) Wait(ctx context.Context, channel string) error {
	if f.waitFn != nil {
		return f.waitFn(ctx, channel)
	}
	return nil
}

type fakeNotifier struct {
	notifyFn func(ctx context.Context, msg queue.HandoverMessage) error
	closeFn  func() error
}

func (f *fakeNotifier) Notify(ctx context.Context, msg queue.HandoverMessage) error {
	if f.notifyFn != nil {
		return f.notifyFn(ctx, msg)
	}
	return nil
}

func (f *fakeNotifier) Close() error {
	if f.closeFn != nil {
		return f.closeFn()
	}
	return nil
}

type fakeSignals struct {
	hasRespondedFn func(ctx context.Context, scheduleID, contactID string) (bool, error)
	hasOpenedFn    func(ctx context.Context, scheduleID, contactID string) (bool, error)
}

func (f *fakeSignals) HasResponded(ctx context.Context, scheduleID, contactID string) (bool, error) {
	if f.hasRespondedFn != nil {
		return f.hasRespondedFn(ctx, scheduleID, contactID)
	}
	return false, nil
}

func (f *fakeSignals) HasOpened(ctx context.Context, scheduleID, contactID string) (bool, error) {
	if f.hasOpenedFn != nil {
		return f.hasOpenedFn(ctx, scheduleID, contactID)
	}
	return false, nil
}
