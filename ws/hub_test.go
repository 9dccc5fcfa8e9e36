package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"homefix_backend/internal/auth"
	"homefix_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	user string
	cap  int

	mu     sync.Mutex
	msgs   [][]byte
	closed bool
}

func (f *fakeSession) UserID() string { return f.user }

func (f *fakeSession) Enqueue(msg []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || (f.cap > 0 && len(f.msgs) >= f.cap) {
		return false
	}
	f.msgs = append(f.msgs, msg)
	return true
}

func (f *fakeSession) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeSession) received() []Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Envelope, 0, len(f.msgs))
	for _, raw := range f.msgs {
		var e Envelope
		_ = json.Unmarshal(raw, &e)
		out = append(out, e)
	}
	return out
}

func (f *fakeSession) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(4)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub
}

func TestPublishReachesEverySessionOfUser(t *testing.T) {
	hub := startHub(t)
	ctx := context.Background()

	phone := &fakeSession{user: "u1"}
	browser := &fakeSession{user: "u1"}
	other := &fakeSession{user: "u2"}
	for _, s := range []*fakeSession{phone, browser, other} {
		require.NoError(t, hub.Register(ctx, s))
	}
	require.Eventually(t, func() bool { return hub.SessionCount("u1") == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Publish(ctx, "u1", "booking_status_updated", map[string]string{"status": "accepted"}))

	for _, s := range []*fakeSession{phone, browser} {
		got := s.received()
		require.Len(t, got, 1)
		assert.Equal(t, "booking_status_updated", got[0].Type)
	}
	assert.Empty(t, other.received())
}

func TestPublishWithoutSessionsIsNotAnError(t *testing.T) {
	hub := startHub(t)
	assert.NoError(t, hub.Publish(context.Background(), "nobody", "notification", nil))
}

func TestSlowSessionIsDropped(t *testing.T) {
	hub := startHub(t)
	ctx := context.Background()

	slow := &fakeSession{user: "u1", cap: 1}
	require.NoError(t, hub.Register(ctx, slow))
	require.Eventually(t, func() bool { return hub.SessionCount("u1") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Publish(ctx, "u1", "notification", "a"))
	require.NoError(t, hub.Publish(ctx, "u1", "notification", "b"))

	require.Eventually(t, func() bool { return hub.SessionCount("u1") == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, slow.isClosed())
	assert.Len(t, slow.received(), 1)
}

func TestUnregisterKeepsOtherSessions(t *testing.T) {
	hub := startHub(t)
	ctx := context.Background()

	a := &fakeSession{user: "u1"}
	b := &fakeSession{user: "u1"}
	require.NoError(t, hub.Register(ctx, a))
	require.NoError(t, hub.Register(ctx, b))
	hub.Unregister(a)

	require.Eventually(t, func() bool { return hub.SessionCount("u1") == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, a.isClosed())
	assert.False(t, b.isClosed())
	assert.Equal(t, 1, hub.ConnectedUsers())
}

func TestRelayHandleDeliversLocally(t *testing.T) {
	hub := startHub(t)
	s := &fakeSession{user: "u1"}
	require.NoError(t, hub.Register(context.Background(), s))
	require.Eventually(t, func() bool { return hub.SessionCount("u1") == 1 }, time.Second, 5*time.Millisecond)

	relay := NewRedisRelay(nil, hub)
	raw, err := json.Marshal(relayMessage{UserID: "u1", Kind: "review_added", Payload: json.RawMessage(`{"rating":5}`)})
	require.NoError(t, err)
	relay.handle(string(raw))

	got := s.received()
	require.Len(t, got, 1)
	assert.Equal(t, "review_added", got[0].Type)
	assert.Equal(t, map[string]interface{}{"rating": float64(5)}, got[0].Data)
}

func TestServeWSRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)
	handler := NewWebSocketHandler(hub, auth.NewTokenManager("secret-secret-secret", time.Hour))

	router := gin.New()
	router.GET("/ws", handler.ServeWS)

	for _, target := range []string{"/ws", "/ws?token=garbage"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}
}

func TestServeWSEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)
	tokens := auth.NewTokenManager("secret-secret-secret", time.Hour)
	handler := NewWebSocketHandler(hub, tokens)

	router := gin.New()
	router.GET("/ws", handler.ServeWS)
	server := httptest.NewServer(router)
	defer server.Close()

	token, err := tokens.Generate("user-1", models.UserRoleHomeowner)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.SessionCount("user-1") == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hub.Publish(context.Background(), "user-1", "new_booking", map[string]string{"booking_id": "b1"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var envelope Envelope
	require.NoError(t, conn.ReadJSON(&envelope))
	assert.Equal(t, "new_booking", envelope.Type)
}
