// Package notify fans new-entry notifications out to a card's
// subscribers. Delivery is strictly best effort: the entry that
// triggered it is already committed, so nothing here may surface as a
// request failure.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rahabenico/core/internal/pkg/mail"
	"github.com/rahabenico/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
)

const (
	// TaskType labels dispatch records in the task queue.
	TaskType = "entry_notify"

	perMailTimeout  = 20 * time.Second
	dispatchTimeout = 5 * time.Minute
)

// SubscriberSource lists the emails subscribed to a card.
type SubscriberSource interface {
	EmailsForCard(cardID string) ([]string, error)
}

// Mailer sends one notification mail.
type Mailer interface {
	Configured() bool
	SendEntryNotify(ctx context.Context, to string, data mail.EntryNotifyData) error
}

// Result summarizes one fan-out run.
type Result struct {
	Sent   int      `json:"sent"`
	Total  int      `json:"total"`
	Errors []string `json:"errors,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type Service struct {
	subs    SubscriberSource
	mailer  Mailer
	tasks   *taskqueue.Service
	baseURL string
	log     *zap.Logger
}

// NewService wires the fan-out. tasks may be nil when no queue is
// available; dispatches then run untracked.
func NewService(subs SubscriberSource, mailer Mailer, tasks *taskqueue.Service, baseURL string, log *zap.Logger) *Service {
	return &Service{
		subs:    subs,
		mailer:  mailer,
		tasks:   tasks,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// SendEntryNotifications mails every subscriber of the card about a new
// entry. One failed recipient never stops the rest; failures are
// collected in the result. A missing mail configuration degrades to a
// zero-sent result instead of an error.
func (s *Service) SendEntryNotifications(ctx context.Context, cardID, cardCustomID, username string) Result {
	emails, err := s.subs.EmailsForCard(cardID)
	if err != nil {
		s.log.Error("list subscribers", zap.String("card", cardCustomID), zap.Error(err))
		return Result{Error: err.Error()}
	}
	if len(emails) == 0 {
		return Result{}
	}
	if !s.mailer.Configured() {
		s.log.Warn("mail not configured, skipping notifications",
			zap.String("card", cardCustomID), zap.Int("subscribers", len(emails)))
		return Result{Total: len(emails), Error: "email service not configured"}
	}

	res := Result{Total: len(emails)}
	for _, to := range emails {
		data := mail.EntryNotifyData{
			CardCustomID:   cardCustomID,
			Username:       username,
			CardURL:        s.cardURL(cardCustomID),
			UnsubscribeURL: s.unsubscribeURL(to, cardCustomID),
		}
		mailCtx, cancel := context.WithTimeout(ctx, perMailTimeout)
		err := s.mailer.SendEntryNotify(mailCtx, to, data)
		cancel()
		if err != nil {
			s.log.Warn("send notification",
				zap.String("card", cardCustomID), zap.String("to", to), zap.Error(err))
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", to, err.Error()))
			continue
		}
		res.Sent++
	}
	return res
}

// Dispatch runs the fan-out in the background and records it in the
// task queue. The caller returns to the visitor immediately.
func (s *Service) Dispatch(cardID, cardCustomID, username string) {
	var taskID string
	if s.tasks != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		task, err := s.tasks.Enqueue(ctx, TaskType, map[string]string{
			"card":     cardCustomID,
			"username": username,
		})
		cancel()
		if err != nil {
			s.log.Warn("enqueue notification task", zap.Error(err))
		} else {
			taskID = task.ID
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if taskID != "" {
			_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, "")
		}
		res := s.SendEntryNotifications(ctx, cardID, cardCustomID, username)
		if taskID != "" {
			status := taskqueue.TaskCompleted
			if res.Error != "" || len(res.Errors) > 0 {
				status = taskqueue.TaskFailed
			}
			_ = s.tasks.UpdateStatus(ctx, taskID, status, res, res.Error)
		}
		s.log.Info("notification fan-out finished",
			zap.String("card", cardCustomID),
			zap.Int("sent", res.Sent),
			zap.Int("total", res.Total),
			zap.Int("failed", len(res.Errors)))
	}()
}

func (s *Service) cardURL(cardCustomID string) string {
	return s.baseURL + "/card/" + cardCustomID
}

func (s *Service) unsubscribeURL(email, cardCustomID string) string {
	return s.baseURL + "/unsubscribe?email=" + url.QueryEscape(email) + "&cardId=" + cardCustomID
}
