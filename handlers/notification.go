package handlers

import (
	"net/http"
	"time"

	"cityportal/i18n"
	"cityportal/models"
	"cityportal/services/notification"
	"cityportal/services/realtime"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// NotificationHandler serves /api/notifications and the realtime websocket.
type NotificationHandler struct {
	Notifications notification.NotificationService
	Hub           *realtime.Hub
	upgrader      websocket.Upgrader
}

// NewNotificationHandler builds the handler. allowedOrigins limits websocket origins; "*" allows any.
func NewNotificationHandler(svc notification.NotificationService, hub *realtime.Hub, allowedOrigins []string) *NotificationHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &NotificationHandler{
		Notifications: svc,
		Hub:           hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	var f models.NotificationFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	f.UserID = utils.CurrentUserID(c)
	list, err := h.Notifications.List(c.Request.Context(), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *NotificationHandler) UnreadCountHandler(c *gin.Context) {
	n, err := h.Notifications.UnreadCount(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	if err := h.Notifications.MarkRead(c.Request.Context(), utils.CurrentUserID(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	ok(c, i18n.MsgSaved)
}

func (h *NotificationHandler) MarkAllReadHandler(c *gin.Context) {
	n, err := h.Notifications.MarkAllRead(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *NotificationHandler) DeleteNotificationHandler(c *gin.Context) {
	if err := h.Notifications.Delete(c.Request.Context(), utils.CurrentUserID(c), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	ok(c, i18n.MsgDeleted)
}

// BroadcastHandler handles POST /api/notifications/broadcast (staff).
func (h *NotificationHandler) BroadcastHandler(c *gin.Context) {
	var req models.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindError(c, err)
		return
	}
	if err := h.Notifications.Broadcast(c.Request.Context(), req); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": i18n.T(utils.RequestLanguage(c), i18n.MsgSaved)})
}

// StreamHandler handles GET /api/notifications/ws. Every notification of the caller
// is written to the socket as one JSON text frame.
func (h *NotificationHandler) StreamHandler(c *gin.Context) {
	logger := utils.RequestLogger(c)
	userID := utils.CurrentUserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already wrote the HTTP error
		logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	sub := h.Hub.Subscribe(userID)
	logger.Info("Realtime subscriber connected", zap.String("userID", userID))

	go readPump(conn, sub)
	writePump(conn, sub)

	logger.Info("Realtime subscriber disconnected", zap.String("userID", userID))
}

// readPump discards client frames and closes the subscription once the peer goes away.
func readPump(conn *websocket.Conn, sub *realtime.Subscription) {
	defer sub.Close()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards events until the subscription ends or a write fails.
func writePump(conn *websocket.Conn, sub *realtime.Subscription) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		sub.Close()
		conn.Close()
	}()

	for {
		select {
		case payload, open := <-sub.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
