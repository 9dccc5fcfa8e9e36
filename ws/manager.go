package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"homefix_backend/internal/logger"
)

const defaultSendBuffer = 32

// Envelope — формат каждого сообщения, уходящего в сокет
type Envelope struct {
	Type   string    `json:"type"`
	Data   any       `json:"data"`
	SentAt time.Time `json:"sent_at"`
}

// session — одно живое соединение пользователя. Client в проде, фейк в тестах.
type session interface {
	UserID() string
	// Enqueue не блокирует; false — буфер переполнен
	Enqueue(msg []byte) bool
	Close()
}

// Hub держит все живые сессии. У пользователя их может быть несколько
// (телефон, вкладки браузера), событие получает каждая.
type Hub struct {
	sessions   map[string]map[session]struct{}
	register   chan session
	unregister chan session
	mu         sync.RWMutex

	sendBuffer int
	done       chan struct{}
}

func NewHub(sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Hub{
		sessions:   make(map[string]map[session]struct{}),
		register:   make(chan session),
		unregister: make(chan session),
		sendBuffer: sendBuffer,
		done:       make(chan struct{}),
	}
}

// Run обслуживает регистрацию до отмены ctx, затем закрывает все сессии
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case s := <-h.register:
			h.mu.Lock()
			set, ok := h.sessions[s.UserID()]
			if !ok {
				set = make(map[session]struct{})
				h.sessions[s.UserID()] = set
			}
			set[s] = struct{}{}
			count := len(set)
			h.mu.Unlock()
			logger.Debug("ws session registered", "user_id", s.UserID(), "sessions", count)

		case s := <-h.unregister:
			h.remove(s)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Done закрывается после остановки Run
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) remove(s session) {
	h.mu.Lock()
	set, ok := h.sessions[s.UserID()]
	if ok {
		if _, exists := set[s]; exists {
			delete(set, s)
			s.Close()
		}
		if len(set) == 0 {
			delete(h.sessions, s.UserID())
		}
	}
	h.mu.Unlock()
	logger.Debug("ws session unregistered", "user_id", s.UserID())
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.sessions {
		for s := range set {
			s.Close()
		}
		delete(h.sessions, userID)
	}
}

// Register блокируется, пока Run не примет сессию
func (h *Hub) Register(ctx context.Context, s session) error {
	select {
	case h.register <- s:
		return nil
	case <-h.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) Unregister(s session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Publish реализует services.EventPublisher для сессий этого процесса.
// Нет сессий — не ошибка: журнал уже записан.
func (h *Hub) Publish(_ context.Context, userID, kind string, payload any) error {
	msg, err := json.Marshal(Envelope{Type: kind, Data: payload, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	h.deliver(userID, msg)
	return nil
}

func (h *Hub) deliver(userID string, msg []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.sessions[userID] {
		if s.Enqueue(msg) {
			delivered++
			continue
		}
		// медленный клиент: отключаем, как при обрыве
		go h.Unregister(s)
		logger.Warn("ws session dropped, send buffer full", "user_id", userID)
	}
	return delivered
}

// SessionCount — количество живых сессий пользователя
func (h *Hub) SessionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

// ConnectedUsers — количество пользователей хотя бы с одной сессией
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
