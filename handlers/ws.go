package handlers

import (
	"encoding/json"
	"time"

	"github.com/LovationAdmin/superapp-api/middleware"
	"github.com/LovationAdmin/superapp-api/models"
	"github.com/LovationAdmin/superapp-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

const sessionUserKey = "user_id"

// Notifier pushes change events to a user's open sessions.
type Notifier interface {
	Notify(userID string, event models.Event)
}

// Hub fans events out to websocket sessions keyed by user.
type Hub struct {
	M *melody.Melody
}

func NewHub() *Hub {
	m := melody.New()

	m.Config.MaxMessageSize = 1024

	// Keep-alive for hosted proxies that drop idle connections
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		utils.LogWebSocket("connected", sessionUser(s))
	})

	m.HandleDisconnect(func(s *melody.Session) {
		utils.LogWebSocket("disconnected", sessionUser(s))
	})

	m.HandleError(func(s *melody.Session, err error) {
		utils.SafeWarn("websocket error: %v", err)
	})

	return &Hub{M: m}
}

// HandleWS upgrades an authenticated request.
func (h *Hub) HandleWS(c *gin.Context) {
	keys := map[string]interface{}{sessionUserKey: middleware.GetUserID(c)}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		utils.SafeWarn("failed to upgrade websocket: %v", err)
	}
}

func (h *Hub) Notify(userID string, event models.Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		utils.SafeError("failed to encode %s event: %v", event.Type, err)
		return
	}

	err = h.M.BroadcastFilter(msg, func(s *melody.Session) bool {
		return sessionUser(s) == userID
	})
	if err != nil {
		utils.SafeWarn("failed to broadcast %s: %v", event.Type, err)
	}
}

func sessionUser(s *melody.Session) string {
	v, _ := s.Get(sessionUserKey)
	id, _ := v.(string)
	return id
}

// Close disconnects every session.
func (h *Hub) Close() error {
	return h.M.Close()
}
