package ws

import (
	"net/http"
	"strings"

	"homefix_backend/internal/auth"
	"homefix_backend/internal/logger"
	"homefix_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // мобильные клиенты приходят без Origin
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// TokenParser — то, что нужно хендлеру от auth.TokenManager
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type WebSocketHandler struct {
	Hub    *Hub
	tokens TokenParser
}

func NewWebSocketHandler(hub *Hub, tokens TokenParser) *WebSocketHandler {
	return &WebSocketHandler{Hub: hub, tokens: tokens}
}

// bearerToken — браузерный WebSocket не умеет заголовки, поэтому и ?token=
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}

func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization token required"))
		return
	}
	claims, err := h.tokens.Parse(token)
	if err != nil {
		apperrors.HandleError(c, apperrors.ErrInvalidToken)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "websocket upgrade failed", "error", err.Error())
		return
	}

	client := newClient(h.Hub, conn, uuid.NewString(), claims.UserID)
	if err := h.Hub.Register(c.Request.Context(), client); err != nil {
		_ = conn.Close()
		return
	}
	logger.CtxInfo(c.Request.Context(), "websocket connected", "user_id", claims.UserID, "session_id", client.ID)

	go client.writePump()
	go client.readPump()
}
