package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"satta-service/internal/service/game"
	pkgAuth "satta-service/pkg/auth"
	appErr "satta-service/pkg/errors"
	"satta-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	gameSvc *game.Service
}

func NewHandler(gameSvc *game.Service) *Handler {
	return &Handler{gameSvc: gameSvc}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Renderers are served from anywhere; the session token is the gate.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Handler) HandleGameWS(c *gin.Context) {
	sessionID := c.Param("id")

	token, err := getTokenFromRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	claims, err := pkgAuth.ParseSessionToken(token)
	if err != nil || claims.SessionID != sessionID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	rt, err := h.gameSvc.GetRuntime(sessionID)
	if err != nil {
		if errors.Is(err, appErr.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load game"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	subscriberID := uuid.NewString()
	logger.Log.Info("New WebSocket connection",
		zap.String("sessionID", sessionID),
		zap.String("subscriberID", subscriberID),
	)

	client := newClient(conn, subscriberID, rt)
	client.run()
}

func getTokenFromRequest(c *gin.Context) (string, error) {
	token := strings.TrimSpace(c.Query("token"))
	if token != "" {
		return token, nil
	}
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = strings.TrimSpace(parts[1])
			if token != "" {
				return token, nil
			}
		}
	}
	return "", errors.New("missing token")
}

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 2 / 5
	maxFrameSize = 1 << 16
)

// inbound is one action frame from a renderer: {"type": "hit", "data": {...}}.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type client struct {
	conn     *websocket.Conn
	id       string
	rt       *game.Runtime
	outbound <-chan game.OutgoingMessage
	done     chan struct{}
	log      *zap.Logger
}

func newClient(conn *websocket.Conn, id string, rt *game.Runtime) *client {
	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &client{
		conn:     conn,
		id:       id,
		rt:       rt,
		outbound: rt.Subscribe(id),
		done:     make(chan struct{}),
		log:      logger.Session(rt.ID()).With(zap.String("subscriberID", id)),
	}
}

func (c *client) run() {
	go c.writePump()
	c.readPump()
}

func (c *client) readPump() {
	defer func() {
		close(c.done)
		c.rt.Unsubscribe(c.id)
		c.conn.Close()
	}()

	for {
		mt, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Info("WS read error", zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var msg inbound
		if err := json.Unmarshal(frame, &msg); err != nil {
			c.sendError("invalid payload")
			continue
		}
		if msg.Type == "" {
			continue
		}
		if err := c.rt.HandleAction(c.id, msg.Type, msg.Data); err != nil {
			c.log.Debug("action rejected", zap.String("action", msg.Type), zap.Error(err))
			c.sendError("action failed: " + err.Error())
		}
	}
}

// sendError queues msg for the write pump, the only writer on conn.
func (c *client) sendError(msg string) {
	c.rt.Notify(c.id, game.OutgoingMessage{
		Type: "error",
		Data: gin.H{"message": msg},
	})
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.outbound:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Session closed or reaped.
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Info("WS write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
