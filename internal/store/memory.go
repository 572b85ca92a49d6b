package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"teamhub-backend/internal/models"

	"github.com/google/uuid"
)

// In-memory store implementations. They back demo mode (running without
// Postgres or Redis) and the test suites. Each store serializes access
// with one mutex, which gives the same per-recipient atomicity the
// single-statement SQL versions provide.

type MemoryNotificationStore struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]*models.Notification
	order         []uuid.UUID
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{
		notifications: make(map[uuid.UUID]*models.Notification),
	}
}

func (s *MemoryNotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = uuid.New()
	n.IsRead = false
	n.ReadAt = nil
	n.CreatedAt = time.Now()

	stored := *n
	s.notifications[n.ID] = &stored
	s.order = append(s.order, n.ID)
	return nil
}

func (s *MemoryNotificationStore) ListForRecipient(_ context.Context, recipientID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	notifications := []models.Notification{}
	// Newest first: walk the insertion order backwards.
	for i := len(s.order) - 1; i >= 0 && len(notifications) < limit; i-- {
		n := s.notifications[s.order[i]]
		if n.RecipientID == recipientID {
			notifications = append(notifications, *n)
		}
	}
	return notifications, nil
}

func (s *MemoryNotificationStore) UnreadCount(_ context.Context, recipientID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *MemoryNotificationStore) MarkRead(_ context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	transitioned := 0
	for _, id := range ids {
		n, ok := s.notifications[id]
		if !ok || n.RecipientID != recipientID || n.IsRead {
			continue
		}
		n.IsRead = true
		readAt := now
		n.ReadAt = &readAt
		transitioned++
	}
	return transitioned, nil
}

func (s *MemoryNotificationStore) MarkAllRead(_ context.Context, recipientID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	transitioned := 0
	for _, n := range s.notifications {
		if n.RecipientID != recipientID || n.IsRead {
			continue
		}
		n.IsRead = true
		readAt := now
		n.ReadAt = &readAt
		transitioned++
	}
	return transitioned, nil
}

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uuid.UUID]models.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrConflict
		}
	}

	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryUserStore) GetByID(_ context.Context, id uuid.UUID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

type MemorySendLogStore struct {
	mu      sync.Mutex
	entries map[string]models.ReminderSendLog
}

func NewMemorySendLogStore() *MemorySendLogStore {
	return &MemorySendLogStore{
		entries: make(map[string]models.ReminderSendLog),
	}
}

func (s *MemorySendLogStore) Get(_ context.Context, recipientEmail string) (models.ReminderSendLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[recipientEmail]
	if !ok {
		return models.ReminderSendLog{}, ErrNotFound
	}
	return entry, nil
}

func (s *MemorySendLogStore) ClaimDay(_ context.Context, recipientEmail, day string, pendingCount int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[recipientEmail]
	if ok && entry.LastSentDate == day {
		return false, nil
	}

	s.entries[recipientEmail] = models.ReminderSendLog{
		RecipientEmail: recipientEmail,
		LastSentDate:   day,
		PendingCount:   pendingCount,
		UpdatedAt:      time.Now(),
	}
	return true, nil
}

type MemoryMessageStore struct {
	mu       sync.RWMutex
	messages []models.Message
}

func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{}
}

func (s *MemoryMessageStore) Create(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = uuid.New().String()
	m.IsRead = false
	m.CreatedAt = time.Now()
	s.messages = append(s.messages, *m)
	return nil
}

func (s *MemoryMessageStore) ListConversation(_ context.Context, userID, otherID string, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := []models.Message{}
	for i := len(s.messages) - 1; i >= 0 && len(messages) < limit; i-- {
		m := s.messages[i]
		if (m.SenderID == userID && m.ReceiverID == otherID) ||
			(m.SenderID == otherID && m.ReceiverID == userID) {
			messages = append(messages, m)
		}
	}
	return messages, nil
}

type MemoryReminderStore struct {
	mu        sync.RWMutex
	reminders map[uuid.UUID]*models.Reminder
}

func NewMemoryReminderStore() *MemoryReminderStore {
	return &MemoryReminderStore{
		reminders: make(map[uuid.UUID]*models.Reminder),
	}
}

func (s *MemoryReminderStore) Create(_ context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = uuid.New()
	r.IsCompleted = false
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt

	stored := *r
	s.reminders[r.ID] = &stored
	return nil
}

func (s *MemoryReminderStore) List(_ context.Context) ([]models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reminders := []models.Reminder{}
	for _, r := range s.reminders {
		reminders = append(reminders, *r)
	}
	sort.Slice(reminders, func(i, j int) bool {
		return reminders[i].ReminderDate.Before(reminders[j].ReminderDate)
	})
	return reminders, nil
}

func (s *MemoryReminderStore) Get(_ context.Context, id uuid.UUID) (models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reminders[id]
	if !ok {
		return models.Reminder{}, ErrNotFound
	}
	return *r, nil
}

func (s *MemoryReminderStore) Update(_ context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.reminders[r.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = r.Title
	existing.Notes = r.Notes
	existing.Priority = r.Priority
	existing.ReminderDate = r.ReminderDate
	existing.UpdatedAt = time.Now()
	*r = *existing
	return nil
}

func (s *MemoryReminderStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[id]; !ok {
		return ErrNotFound
	}
	delete(s.reminders, id)
	return nil
}

func (s *MemoryReminderStore) Complete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok {
		return ErrNotFound
	}
	r.IsCompleted = true
	r.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryReminderStore) ListDue(_ context.Context, now time.Time) ([]models.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	due := []models.Reminder{}
	for _, r := range s.reminders {
		if r.IsDue(now) {
			due = append(due, *r)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].ReminderDate.Before(due[j].ReminderDate)
	})
	return due, nil
}
