package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"teamhub-backend/internal/models"

	"github.com/google/uuid"
)

func createNotification(t *testing.T, s NotificationStore, recipientID uuid.UUID) models.Notification {
	t.Helper()

	n := models.Notification{
		RecipientID: recipientID,
		Category:    models.CategoryGeneral,
		Title:       "test notification",
		Body:        "body",
	}
	if err := s.Create(context.Background(), &n); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return n
}

func TestUnreadCountTracksCreatesAndReads(t *testing.T) {
	s := NewMemoryNotificationStore()
	ctx := context.Background()
	recipient := uuid.New()

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		n := createNotification(t, s, recipient)
		ids = append(ids, n.ID)
	}

	count, err := s.UnreadCount(ctx, recipient)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 unread, got %d", count)
	}

	updated, err := s.MarkRead(ctx, recipient, ids[:2])
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if updated != 2 {
		t.Errorf("expected 2 transitioned, got %d", updated)
	}

	count, _ = s.UnreadCount(ctx, recipient)
	if count != 3 {
		t.Errorf("expected 3 unread after MarkRead, got %d", count)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	s := NewMemoryNotificationStore()
	ctx := context.Background()
	recipient := uuid.New()

	n := createNotification(t, s, recipient)

	updated, err := s.MarkRead(ctx, recipient, []uuid.UUID{n.ID})
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 transitioned, got %d", updated)
	}

	after, err := s.ListForRecipient(ctx, recipient, 10)
	if err != nil {
		t.Fatalf("ListForRecipient failed: %v", err)
	}
	firstReadAt := after[0].ReadAt
	if firstReadAt == nil {
		t.Fatal("expected read_at to be set")
	}

	time.Sleep(5 * time.Millisecond)

	// Second call is a no-op: nothing transitions and read_at is unchanged.
	updated, err = s.MarkRead(ctx, recipient, []uuid.UUID{n.ID})
	if err != nil {
		t.Fatalf("second MarkRead failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("expected 0 transitioned on repeat, got %d", updated)
	}

	after, _ = s.ListForRecipient(ctx, recipient, 10)
	if !after[0].ReadAt.Equal(*firstReadAt) {
		t.Errorf("read_at changed on repeated MarkRead: %v != %v", after[0].ReadAt, firstReadAt)
	}
}

func TestMarkReadIgnoresForeignNotifications(t *testing.T) {
	s := NewMemoryNotificationStore()
	ctx := context.Background()
	owner := uuid.New()
	attacker := uuid.New()

	n := createNotification(t, s, owner)

	updated, err := s.MarkRead(ctx, attacker, []uuid.UUID{n.ID})
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("expected 0 transitioned for foreign recipient, got %d", updated)
	}

	count, _ := s.UnreadCount(ctx, owner)
	if count != 1 {
		t.Errorf("owner's notification should stay unread, count = %d", count)
	}
}

func TestMarkAllReadScenario(t *testing.T) {
	s := NewMemoryNotificationStore()
	ctx := context.Background()
	recipient := uuid.New()

	// 3 notifications, 1 already read.
	n1 := createNotification(t, s, recipient)
	createNotification(t, s, recipient)
	createNotification(t, s, recipient)
	if _, err := s.MarkRead(ctx, recipient, []uuid.UUID{n1.ID}); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	count, _ := s.UnreadCount(ctx, recipient)
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}

	updated, err := s.MarkAllRead(ctx, recipient)
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if updated != 2 {
		t.Errorf("expected 2 transitioned, got %d", updated)
	}

	count, _ = s.UnreadCount(ctx, recipient)
	if count != 0 {
		t.Errorf("expected 0 unread after MarkAllRead, got %d", count)
	}

	// Re-running changes nothing.
	updated, err = s.MarkAllRead(ctx, recipient)
	if err != nil {
		t.Fatalf("second MarkAllRead failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("expected 0 transitioned on repeat, got %d", updated)
	}
}

func TestMarkAllReadAtomicAgainstUnreadCount(t *testing.T) {
	s := NewMemoryNotificationStore()
	ctx := context.Background()
	recipient := uuid.New()

	const total = 20
	for i := 0; i < total; i++ {
		createNotification(t, s, recipient)
	}

	const readers = 16
	counts := make([]int, readers)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			count, err := s.UnreadCount(ctx, recipient)
			if err != nil {
				t.Errorf("UnreadCount failed: %v", err)
				return
			}
			counts[i] = count
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		if _, err := s.MarkAllRead(ctx, recipient); err != nil {
			t.Errorf("MarkAllRead failed: %v", err)
		}
	}()

	close(start)
	wg.Wait()

	// Every reader must have seen the full pre-state or the full
	// post-state, never a partial transition.
	for i, count := range counts {
		if count != 0 && count != total {
			t.Errorf("reader %d observed intermediate count %d", i, count)
		}
	}
}

func TestListForRecipientNewestFirst(t *testing.T) {
	s := NewMemoryNotificationStore()
	ctx := context.Background()
	recipient := uuid.New()

	first := createNotification(t, s, recipient)
	second := createNotification(t, s, recipient)

	list, err := s.ListForRecipient(ctx, recipient, 10)
	if err != nil {
		t.Fatalf("ListForRecipient failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Error("expected newest-first ordering")
	}
}

func TestClaimDayExactlyOneWinner(t *testing.T) {
	s := NewMemorySendLogStore()
	ctx := context.Background()
	day := models.DayOf(time.Now())

	const callers = 10
	wins := make([]bool, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			won, err := s.ClaimDay(ctx, "admin@example.com", day, 3)
			if err != nil {
				t.Errorf("ClaimDay failed: %v", err)
				return
			}
			wins[i] = won
		}(i)
	}

	close(start)
	wg.Wait()

	winners := 0
	for _, won := range wins {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("expected exactly 1 winner, got %d", winners)
	}

	entry, err := s.Get(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.LastSentDate != day {
		t.Errorf("expected last sent date %s, got %s", day, entry.LastSentDate)
	}
}

func TestClaimDayAdvancesAcrossDays(t *testing.T) {
	s := NewMemorySendLogStore()
	ctx := context.Background()

	dayOne := "2026-03-01"
	dayTwo := "2026-03-02"

	won, err := s.ClaimDay(ctx, "admin@example.com", dayOne, 1)
	if err != nil || !won {
		t.Fatalf("expected first claim to win, won=%v err=%v", won, err)
	}

	won, err = s.ClaimDay(ctx, "admin@example.com", dayOne, 1)
	if err != nil || won {
		t.Fatalf("expected repeat claim for same day to lose, won=%v err=%v", won, err)
	}

	won, err = s.ClaimDay(ctx, "admin@example.com", dayTwo, 2)
	if err != nil || !won {
		t.Fatalf("expected next-day claim to win, won=%v err=%v", won, err)
	}

	entry, _ := s.Get(ctx, "admin@example.com")
	if entry.LastSentDate != dayTwo {
		t.Errorf("expected last sent date %s, got %s", dayTwo, entry.LastSentDate)
	}
}

func TestSendLogGetUnknownRecipient(t *testing.T) {
	s := NewMemorySendLogStore()

	_, err := s.Get(context.Background(), "nobody@example.com")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReminderListDue(t *testing.T) {
	s := NewMemoryReminderStore()
	ctx := context.Background()
	now := time.Now()

	overdue := models.Reminder{Title: "overdue", Priority: models.PriorityHigh, ReminderDate: now.Add(-time.Hour)}
	future := models.Reminder{Title: "future", Priority: models.PriorityLow, ReminderDate: now.Add(time.Hour)}
	done := models.Reminder{Title: "done", Priority: models.PriorityMedium, ReminderDate: now.Add(-time.Hour)}

	for _, r := range []*models.Reminder{&overdue, &future, &done} {
		if err := s.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if err := s.Complete(ctx, done.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	due, err := s.ListDue(ctx, now)
	if err != nil {
		t.Fatalf("ListDue failed: %v", err)
	}
	if len(due) != 1 || due[0].Title != "overdue" {
		t.Errorf("expected only the overdue reminder, got %+v", due)
	}
}
