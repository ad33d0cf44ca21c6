package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/rahabenico/core/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSubs struct {
	emails []string
	err    error
}

func (f *fakeSubs) EmailsForCard(string) ([]string, error) { return f.emails, f.err }

type fakeMailer struct {
	configured bool
	failFor    map[string]error
	sent       []mail.EntryNotifyData
	sentTo     []string
}

func (f *fakeMailer) Configured() bool { return f.configured }

func (f *fakeMailer) SendEntryNotify(_ context.Context, to string, data mail.EntryNotifyData) error {
	if err := f.failFor[to]; err != nil {
		return err
	}
	f.sentTo = append(f.sentTo, to)
	f.sent = append(f.sent, data)
	return nil
}

func newTestService(subs SubscriberSource, m Mailer) *Service {
	return NewService(subs, m, nil, "https://rahabenico.vercel.app/", zap.NewNop())
}

func TestSendEntryNotificationsNoSubscribers(t *testing.T) {
	m := &fakeMailer{configured: true}
	s := newTestService(&fakeSubs{}, m)

	res := s.SendEntryNotifications(context.Background(), "card-id", "berlin-01", "ana")

	assert.Equal(t, Result{}, res)
	assert.Empty(t, m.sentTo, "no mail attempts without subscribers")
}

func TestSendEntryNotificationsUnconfiguredDegrades(t *testing.T) {
	m := &fakeMailer{configured: false}
	s := newTestService(&fakeSubs{emails: []string{"a@example.com"}}, m)

	res := s.SendEntryNotifications(context.Background(), "card-id", "berlin-01", "ana")

	assert.Equal(t, 0, res.Sent)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "email service not configured", res.Error)
	assert.Empty(t, m.sentTo)
}

func TestSendEntryNotificationsContinuesPastFailures(t *testing.T) {
	m := &fakeMailer{
		configured: true,
		failFor:    map[string]error{"b@example.com": errors.New("mailbox full")},
	}
	subs := &fakeSubs{emails: []string{"a@example.com", "b@example.com", "c@example.com"}}
	s := newTestService(subs, m)

	res := s.SendEntryNotifications(context.Background(), "card-id", "berlin-01", "ana")

	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "b@example.com")
	assert.Contains(t, res.Errors[0], "mailbox full")
	assert.Equal(t, []string{"a@example.com", "c@example.com"}, m.sentTo)
}

func TestSendEntryNotificationsPayload(t *testing.T) {
	m := &fakeMailer{configured: true}
	s := newTestService(&fakeSubs{emails: []string{"fan+art@example.com"}}, m)

	s.SendEntryNotifications(context.Background(), "card-id", "berlin-01", "ana")

	assert.Len(t, m.sent, 1)
	data := m.sent[0]
	assert.Equal(t, "berlin-01", data.CardCustomID)
	assert.Equal(t, "ana", data.Username)
	assert.Equal(t, "https://rahabenico.vercel.app/card/berlin-01", data.CardURL)
	assert.Equal(t,
		"https://rahabenico.vercel.app/unsubscribe?email=fan%2Bart%40example.com&cardId=berlin-01",
		data.UnsubscribeURL, "email must be query-escaped in the unsubscribe link")
}

func TestSendEntryNotificationsSubscriberLookupError(t *testing.T) {
	m := &fakeMailer{configured: true}
	s := newTestService(&fakeSubs{err: errors.New("db down")}, m)

	res := s.SendEntryNotifications(context.Background(), "card-id", "berlin-01", "ana")

	assert.Equal(t, "db down", res.Error)
	assert.Empty(t, m.sentTo)
}
