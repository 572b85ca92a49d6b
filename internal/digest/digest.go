package digest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"teamhub-backend/internal/models"
	"teamhub-backend/internal/store"
)

// Status of a TryDispatch call. AlreadySent and NothingDue are normal
// skip outcomes, not errors.
type Status string

const (
	StatusSent           Status = "sent"
	StatusAlreadySent    Status = "already_sent"
	StatusNothingDue     Status = "nothing_due"
	StatusDispatchFailed Status = "dispatch_failed"
)

type Outcome struct {
	Status   Status `json:"status"`
	DueCount int    `json:"due_count"`
	// Err is set for StatusDispatchFailed: the email failed after the day
	// was claimed. The claim is deliberately not rolled back.
	Err error `json:"-"`
}

// EmailSender is the transactional email dependency.
type EmailSender interface {
	Send(toEmail, subject, htmlBody string) error
}

// Composer decides whether a reminder digest is due for a recipient and
// dispatches it at most once per calendar day.
type Composer struct {
	reminders store.ReminderStore
	sendLog   store.SendLogStore
	sender    EmailSender
	now       func() time.Time
}

func NewComposer(reminders store.ReminderStore, sendLog store.SendLogStore, sender EmailSender) *Composer {
	return &Composer{
		reminders: reminders,
		sendLog:   sendLog,
		sender:    sender,
		now:       time.Now,
	}
}

// WithClock overrides the clock. Tests use it to cross day boundaries.
func (c *Composer) WithClock(now func() time.Time) *Composer {
	c.now = now
	return c
}

// TryDispatch runs the claim-the-day state machine:
//
//  1. already sent today -> AlreadySent, nothing else happens
//  2. no due reminders -> NothingDue, the day is NOT claimed
//  3. claim the day with one atomic conditional write; losing the race
//     is AlreadySent
//  4. only the claim winner sends the email; a send failure keeps the
//     claim (prefer under-sending over duplicate digests)
//
// The claim must be visible before the possibly slow, possibly failing
// dispatch begins; that ordering is what makes concurrent callers safe.
func (c *Composer) TryDispatch(ctx context.Context, recipientEmail string) (Outcome, error) {
	now := c.now()
	today := models.DayOf(now)

	entry, err := c.sendLog.Get(ctx, recipientEmail)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Outcome{}, fmt.Errorf("send log read failed: %w", err)
	}
	if err == nil && entry.LastSentDate == today {
		return Outcome{Status: StatusAlreadySent}, nil
	}

	due, err := c.reminders.ListDue(ctx, now)
	if err != nil {
		return Outcome{}, fmt.Errorf("due reminder query failed: %w", err)
	}
	if len(due) == 0 {
		return Outcome{Status: StatusNothingDue}, nil
	}

	won, err := c.sendLog.ClaimDay(ctx, recipientEmail, today, len(due))
	if err != nil {
		return Outcome{}, fmt.Errorf("day claim failed: %w", err)
	}
	if !won {
		return Outcome{Status: StatusAlreadySent, DueCount: len(due)}, nil
	}

	subject, body := composeDigest(due, now)
	if err := c.sender.Send(recipientEmail, subject, body); err != nil {
		log.Printf("Digest dispatch to %s failed after day claim: %v", recipientEmail, err)
		return Outcome{Status: StatusDispatchFailed, DueCount: len(due), Err: err}, nil
	}

	return Outcome{Status: StatusSent, DueCount: len(due)}, nil
}

// DigestStatus reports the current send-log entry and due count without
// dispatching anything.
type DigestStatus struct {
	LastSentDate string `json:"last_sent_date,omitempty"`
	SentToday    bool   `json:"sent_today"`
	DueCount     int    `json:"due_count"`
}

func (c *Composer) Status(ctx context.Context, recipientEmail string) (DigestStatus, error) {
	now := c.now()
	status := DigestStatus{}

	entry, err := c.sendLog.Get(ctx, recipientEmail)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return status, fmt.Errorf("send log read failed: %w", err)
	}
	if err == nil {
		status.LastSentDate = entry.LastSentDate
		status.SentToday = entry.LastSentDate == models.DayOf(now)
	}

	due, err := c.reminders.ListDue(ctx, now)
	if err != nil {
		return status, fmt.Errorf("due reminder query failed: %w", err)
	}
	status.DueCount = len(due)
	return status, nil
}

func composeDigest(due []models.Reminder, now time.Time) (subject, body string) {
	subject = fmt.Sprintf("Reminder digest: %d item(s) due", len(due))

	byPriority := map[string][]models.Reminder{}
	for _, r := range due {
		byPriority[r.Priority] = append(byPriority[r.Priority], r)
	}

	var sb strings.Builder
	sb.WriteString("<html><body>")
	sb.WriteString("<h2>Your reminders for " + now.Format("January 2, 2006") + "</h2>")
	for _, priority := range []string{models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		reminders := byPriority[priority]
		if len(reminders) == 0 {
			continue
		}
		sb.WriteString("<h3>" + strings.ToUpper(priority[:1]) + priority[1:] + " priority</h3><ul>")
		for _, r := range reminders {
			sb.WriteString("<li><strong>" + r.Title + "</strong>")
			if r.Notes != "" {
				sb.WriteString(": " + r.Notes)
			}
			sb.WriteString(" (due " + r.ReminderDate.Format("Jan 2") + ")</li>")
		}
		sb.WriteString("</ul>")
	}
	sb.WriteString("</body></html>")

	return subject, sb.String()
}
