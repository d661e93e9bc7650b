// internal/reminder/reminder.go
package reminder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/war/internal/models"
	"github.com/sirupsen/logrus"
)

const subject = "This is a reminder!"

// Email is a single outgoing message.
type Email struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers reminder emails.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// Store is the read access the job needs.
type Store interface {
	ListUsersWithEmail(ctx context.Context) ([]models.User, error)
	ListGamesByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*models.Game, error)
}

// LogMailer writes reminders to the log instead of sending them.
type LogMailer struct {
	Logger *logrus.Logger
}

func (m LogMailer) Send(_ context.Context, msg Email) error {
	m.Logger.WithFields(logrus.Fields{
		"from":    msg.From,
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info(msg.Body)
	return nil
}

// Job reminds users with an email about each game they still have running.
type Job struct {
	Store  Store
	Mailer Mailer
	From   string
	Logger *logrus.Logger
}

// Run sends one reminder per active game and returns how many were sent.
// A failed send is logged and does not stop the remaining reminders.
func (j *Job) Run(ctx context.Context) (int, error) {
	users, err := j.Store.ListUsersWithEmail(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	sent := 0
	var errs []error
	for _, u := range users {
		games, err := j.Store.ListGamesByUser(ctx, u.ID, true)
		if err != nil {
			errs = append(errs, fmt.Errorf("list games of %s: %w", u.Name, err))
			continue
		}
		for _, g := range games {
			msg := Email{
				From:    j.From,
				To:      u.Email,
				Subject: subject,
				Body:    fmt.Sprintf("Hey %s, the battle isn't over!", u.Name),
			}
			if err := j.Mailer.Send(ctx, msg); err != nil {
				j.Logger.WithFields(logrus.Fields{"user": u.Name, "game_id": g.ID}).Warnf("reminder failed: %v", err)
				errs = append(errs, err)
				continue
			}
			sent++
		}
	}
	return sent, errors.Join(errs...)
}
