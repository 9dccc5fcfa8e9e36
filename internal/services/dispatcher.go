package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"homefix_backend/internal/logger"
	"homefix_backend/internal/models"
	"homefix_backend/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultPushTimeout = 2 * time.Second

type push struct {
	userID  string
	kind    string
	payload any
}

type domainEvent struct {
	routingKey string
	payload    any
}

// Effects накапливает побочные эффекты одной операции. Журнал пишется в той же
// транзакции, что и бронирование; push, брокер и email идут после commit.
type Effects struct {
	notifications []*models.Notification
	pushes        []push
	events        []domainEvent
}

func (fx *Effects) Notify(userID string, typ models.NotificationType, title, message string, data map[string]any) {
	if userID == "" {
		return
	}
	n := &models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	}
	if len(data) > 0 {
		if raw, err := json.Marshal(data); err == nil {
			n.Data = datatypes.JSON(raw)
		}
	}
	fx.notifications = append(fx.notifications, n)
}

func (fx *Effects) Push(userID, kind string, payload any) {
	if userID == "" {
		return
	}
	fx.pushes = append(fx.pushes, push{userID: userID, kind: kind, payload: payload})
}

func (fx *Effects) Emit(routingKey string, payload any) {
	fx.events = append(fx.events, domainEvent{routingKey: routingKey, payload: payload})
}

// Notifications — для тестов и логирования
func (fx *Effects) Notifications() []*models.Notification {
	return fx.notifications
}

type DispatcherConfig struct {
	Notifications repositories.NotificationRepository
	Users         repositories.UserRepository
	Publisher     EventPublisher
	Bus           EventBus
	Mailer        Mailer
	PushTimeout   time.Duration
}

// Dispatcher — журнал уведомлений и best-effort доставка
type Dispatcher struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	publisher     EventPublisher
	bus           EventBus
	mailer        Mailer
	pushTimeout   time.Duration

	wg sync.WaitGroup
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		notifications: cfg.Notifications,
		users:         cfg.Users,
		publisher:     cfg.Publisher,
		bus:           cfg.Bus,
		mailer:        cfg.Mailer,
		pushTimeout:   cfg.PushTimeout,
	}
	if d.publisher == nil {
		d.publisher = noopPublisher{}
	}
	if d.bus == nil {
		d.bus = noopBus{}
	}
	if d.pushTimeout <= 0 {
		d.pushTimeout = defaultPushTimeout
	}
	return d
}

// Journal записывает уведомления. Ошибка здесь валит всю операцию.
func (d *Dispatcher) Journal(tx *gorm.DB, fx *Effects) error {
	return d.notifications.CreateBatch(tx, fx.notifications)
}

// Flush запускает доставку в фоне. Ошибки только логируются.
func (d *Dispatcher) Flush(ctx context.Context, db *gorm.DB, fx *Effects) {
	if fx == nil || (len(fx.notifications) == 0 && len(fx.pushes) == 0 && len(fx.events) == 0) {
		return
	}
	base := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(base, db, fx)
	}()
}

// Wait дожидается всех запущенных доставок (graceful shutdown, тесты)
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, db *gorm.DB, fx *Effects) {
	settings := d.loadSettings(ctx, db, fx)

	for _, n := range fx.notifications {
		prefs := settings[n.UserID]
		if prefs == nil || prefs.PushNotifications {
			d.publish(ctx, n.UserID, EventNotification, toNotificationResponse(n))
		}
		if prefs != nil && prefs.EmailNotifications && n.Type == models.NotificationTypePayment {
			d.sendEmail(ctx, db, n)
		}
	}

	for _, p := range fx.pushes {
		d.publish(ctx, p.userID, p.kind, p.payload)
	}

	for _, ev := range fx.events {
		pctx, cancel := context.WithTimeout(ctx, d.pushTimeout)
		err := d.bus.PublishJSON(pctx, ev.routingKey, ev.payload)
		cancel()
		if err != nil {
			logger.CtxWarn(ctx, "domain event publish failed", "routing_key", ev.routingKey, "error", err.Error())
		}
	}
}

func (d *Dispatcher) loadSettings(ctx context.Context, db *gorm.DB, fx *Effects) map[string]*models.NotificationSettings {
	seen := make(map[string]bool)
	var userIDs []string
	for _, n := range fx.notifications {
		if !seen[n.UserID] {
			seen[n.UserID] = true
			userIDs = append(userIDs, n.UserID)
		}
	}

	settings, err := d.notifications.FindSettingsForUsers(db.WithContext(ctx), userIDs)
	if err != nil {
		// без настроек доставляем как по умолчанию
		logger.CtxWarn(ctx, "failed to load notification settings", "error", err.Error())
		return nil
	}
	return settings
}

func (d *Dispatcher) publish(ctx context.Context, userID, kind string, payload any) {
	pctx, cancel := context.WithTimeout(ctx, d.pushTimeout)
	defer cancel()
	err := d.publisher.Publish(pctx, userID, kind, payload)
	logger.FanoutLog(userID, kind, "realtime", err)
}

func (d *Dispatcher) sendEmail(ctx context.Context, db *gorm.DB, n *models.Notification) {
	if d.mailer == nil || d.users == nil {
		return
	}
	user, err := d.users.FindByID(db.WithContext(ctx), n.UserID)
	if err != nil || user.Email == "" {
		return
	}

	mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	err = d.mailer.Send(mctx, user.Email, n.Title, n.Message)
	logger.FanoutLog(n.UserID, string(n.Type), "email", err)
}

func newBookingEvent(b *models.Booking) BookingEvent {
	return BookingEvent{
		EventID:       uuid.NewString(),
		BookingID:     b.ID,
		HomeownerID:   b.HomeownerID,
		WorkerID:      b.WorkerID,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		PaymentAmount: b.PaymentAmount,
		OccurredAt:    time.Now().UTC(),
	}
}
