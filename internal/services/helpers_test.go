package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"homefix_backend/internal/cache"
	"homefix_backend/internal/config"
	"homefix_backend/internal/models"
	"homefix_backend/internal/services/dto"
	"homefix_backend/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type published struct {
	userID  string
	kind    string
	payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, userID, kind string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{userID: userID, kind: kind, payload: payload})
	return f.err
}

func (f *fakePublisher) kinds(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		if e.userID == userID {
			out = append(out, e.kind)
		}
	}
	return out
}

type fakeBus struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeBus) PublishJSON(_ context.Context, routingKey string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, routingKey)
	return nil
}

func (f *fakeBus) routingKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

type sentMail struct {
	to, subject string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) Send(_ context.Context, to, subject, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject})
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type testEnv struct {
	db     *gorm.DB
	svc    *ServiceContainer
	pub    *fakePublisher
	bus    *fakeBus
	mailer *fakeMailer
	store  *cache.MemoryStore
	now    time.Time
	ctx    context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		db:     testutil.NewDB(t),
		pub:    &fakePublisher{},
		bus:    &fakeBus{},
		mailer: &fakeMailer{},
		store:  cache.NewMemoryStore(),
		now:    time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		ctx:    context.Background(),
	}

	cfg := config.Default()
	env.svc = NewServiceContainer(&cfg, Deps{
		Publisher: env.pub,
		Bus:       env.bus,
		Mailer:    env.mailer,
		Store:     env.store,
		Now:       func() time.Time { return env.now },
	})
	t.Cleanup(env.svc.Dispatcher.Wait)
	return env
}

// settle ждёт фоновую доставку
func (e *testEnv) settle() {
	e.svc.Dispatcher.Wait()
}

func homeownerPrincipal(u *models.User) Principal {
	return Principal{UserID: u.ID, Role: models.UserRoleHomeowner}
}

func workerPrincipal(w *models.WorkerProfile) Principal {
	return Principal{UserID: w.UserID, Role: models.UserRoleWorker}
}

func ptr[T any](v T) *T {
	return &v
}

func (e *testEnv) bookingRequest(worker *models.WorkerProfile) *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{
		WorkerID:       worker.ID,
		Description:    "Repaint the bedroom walls",
		BookingDate:    ptr(e.now.Add(48 * time.Hour)),
		Address:        "221B Baker Street",
		EstimatedHours: ptr(2.0),
		EstimatedPrice: ptr(80.0),
	}
}

func (e *testEnv) notificationsFor(t *testing.T, userID string) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, e.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error)
	return out
}

func titles(ns []models.Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Title)
	}
	return out
}
