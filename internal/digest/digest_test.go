package digest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"teamhub-backend/internal/models"
	"teamhub-backend/internal/store"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	fail bool
	body string
}

func (f *fakeSender) Send(toEmail, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp unreachable")
	}
	f.sent = append(f.sent, toEmail)
	f.body = htmlBody
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func setupComposer(t *testing.T) (*Composer, *store.MemoryReminderStore, *store.MemorySendLogStore, *fakeSender) {
	t.Helper()

	reminders := store.NewMemoryReminderStore()
	sendLog := store.NewMemorySendLogStore()
	sender := &fakeSender{}
	composer := NewComposer(reminders, sendLog, sender)
	return composer, reminders, sendLog, sender
}

func addDueReminder(t *testing.T, reminders *store.MemoryReminderStore, title, priority string) {
	t.Helper()

	r := models.Reminder{
		Title:        title,
		Priority:     priority,
		ReminderDate: time.Now().Add(-time.Hour),
	}
	if err := reminders.Create(context.Background(), &r); err != nil {
		t.Fatalf("failed to create reminder: %v", err)
	}
}

func TestTryDispatchSendsWhenDue(t *testing.T) {
	composer, reminders, sendLog, sender := setupComposer(t)
	addDueReminder(t, reminders, "renew certificates", models.PriorityHigh)
	addDueReminder(t, reminders, "review invites", models.PriorityLow)

	outcome, err := composer.TryDispatch(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("TryDispatch failed: %v", err)
	}
	if outcome.Status != StatusSent {
		t.Fatalf("expected StatusSent, got %s", outcome.Status)
	}
	if outcome.DueCount != 2 {
		t.Errorf("expected 2 due, got %d", outcome.DueCount)
	}
	if sender.count() != 1 {
		t.Errorf("expected 1 email, got %d", sender.count())
	}
	if !strings.Contains(sender.body, "renew certificates") {
		t.Error("digest body missing reminder title")
	}

	entry, err := sendLog.Get(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("send log entry missing after dispatch: %v", err)
	}
	if entry.LastSentDate != models.DayOf(time.Now()) {
		t.Errorf("unexpected last sent date %s", entry.LastSentDate)
	}
}

func TestTryDispatchSkipsWhenAlreadySentToday(t *testing.T) {
	composer, reminders, _, sender := setupComposer(t)
	addDueReminder(t, reminders, "renew certificates", models.PriorityHigh)

	if _, err := composer.TryDispatch(context.Background(), "admin@example.com"); err != nil {
		t.Fatalf("first TryDispatch failed: %v", err)
	}

	outcome, err := composer.TryDispatch(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("second TryDispatch failed: %v", err)
	}
	if outcome.Status != StatusAlreadySent {
		t.Errorf("expected StatusAlreadySent, got %s", outcome.Status)
	}
	if sender.count() != 1 {
		t.Errorf("expected exactly 1 email, got %d", sender.count())
	}
}

func TestTryDispatchNothingDueDoesNotClaimDay(t *testing.T) {
	composer, _, sendLog, sender := setupComposer(t)

	outcome, err := composer.TryDispatch(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("TryDispatch failed: %v", err)
	}
	if outcome.Status != StatusNothingDue {
		t.Fatalf("expected StatusNothingDue, got %s", outcome.Status)
	}
	if sender.count() != 0 {
		t.Errorf("expected no email, got %d", sender.count())
	}

	// "Nothing to send" is distinct from "already sent": the day stays
	// unclaimed so a reminder becoming due later today still goes out.
	if _, err := sendLog.Get(context.Background(), "admin@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected no send log entry, got err=%v", err)
	}
}

func TestTryDispatchConcurrentCallersSendOnce(t *testing.T) {
	composer, reminders, _, sender := setupComposer(t)
	addDueReminder(t, reminders, "renew certificates", models.PriorityHigh)

	const callers = 8
	outcomes := make([]Outcome, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			outcome, err := composer.TryDispatch(context.Background(), "admin@example.com")
			if err != nil {
				t.Errorf("TryDispatch failed: %v", err)
				return
			}
			outcomes[i] = outcome
		}(i)
	}

	close(start)
	wg.Wait()

	sent := 0
	for _, outcome := range outcomes {
		switch outcome.Status {
		case StatusSent:
			sent++
		case StatusAlreadySent:
		default:
			t.Errorf("unexpected outcome %s", outcome.Status)
		}
	}
	if sent != 1 {
		t.Errorf("expected exactly 1 sent outcome, got %d", sent)
	}
	if sender.count() != 1 {
		t.Errorf("expected exactly 1 email, got %d", sender.count())
	}
}

func TestTryDispatchAcrossDayBoundary(t *testing.T) {
	composer, reminders, sendLog, sender := setupComposer(t)

	dayOne := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := models.Reminder{
		Title:        "renew certificates",
		Priority:     models.PriorityHigh,
		ReminderDate: dayOne.Add(-time.Hour),
	}
	if err := reminders.Create(context.Background(), &r); err != nil {
		t.Fatalf("failed to create reminder: %v", err)
	}

	now := dayOne
	composer.WithClock(func() time.Time { return now })

	if outcome, _ := composer.TryDispatch(context.Background(), "admin@example.com"); outcome.Status != StatusSent {
		t.Fatalf("day one dispatch: expected StatusSent, got %s", outcome.Status)
	}

	now = dayOne.Add(24 * time.Hour)
	if outcome, _ := composer.TryDispatch(context.Background(), "admin@example.com"); outcome.Status != StatusSent {
		t.Fatalf("day two dispatch: expected StatusSent, got %s", outcome.Status)
	}

	if sender.count() != 2 {
		t.Errorf("expected 2 emails across days, got %d", sender.count())
	}
	entry, _ := sendLog.Get(context.Background(), "admin@example.com")
	if entry.LastSentDate != "2026-03-02" {
		t.Errorf("expected last sent date to advance to 2026-03-02, got %s", entry.LastSentDate)
	}
}

func TestTryDispatchFailureKeepsClaim(t *testing.T) {
	composer, reminders, sendLog, sender := setupComposer(t)
	sender.fail = true
	addDueReminder(t, reminders, "renew certificates", models.PriorityHigh)

	outcome, err := composer.TryDispatch(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("TryDispatch failed: %v", err)
	}
	if outcome.Status != StatusDispatchFailed {
		t.Fatalf("expected StatusDispatchFailed, got %s", outcome.Status)
	}
	if outcome.Err == nil {
		t.Error("expected outcome error for failed dispatch")
	}

	// The claim is not rolled back: no retry storm can bypass the daily cap.
	if _, err := sendLog.Get(context.Background(), "admin@example.com"); err != nil {
		t.Fatalf("expected claim to survive dispatch failure: %v", err)
	}

	sender.fail = false
	outcome, _ = composer.TryDispatch(context.Background(), "admin@example.com")
	if outcome.Status != StatusAlreadySent {
		t.Errorf("expected StatusAlreadySent after failed dispatch, got %s", outcome.Status)
	}
	if sender.count() != 0 {
		t.Errorf("expected no successful sends today, got %d", sender.count())
	}
}

func TestStatusReportsDueAndSent(t *testing.T) {
	composer, reminders, _, _ := setupComposer(t)
	addDueReminder(t, reminders, "renew certificates", models.PriorityHigh)

	status, err := composer.Status(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.SentToday || status.LastSentDate != "" {
		t.Errorf("expected clean status before any dispatch, got %+v", status)
	}
	if status.DueCount != 1 {
		t.Errorf("expected 1 due, got %d", status.DueCount)
	}

	if _, err := composer.TryDispatch(context.Background(), "admin@example.com"); err != nil {
		t.Fatalf("TryDispatch failed: %v", err)
	}

	status, _ = composer.Status(context.Background(), "admin@example.com")
	if !status.SentToday {
		t.Error("expected SentToday after dispatch")
	}
}
