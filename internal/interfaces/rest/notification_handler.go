package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/crewhq/backend/internal/application/services"
	"github.com/crewhq/backend/pkg/constants"
)

type NotificationHandler struct {
	svcMgr *services.ServiceManager
}

func NewNotificationHandler(svcMgr *services.ServiceManager) *NotificationHandler {
	return &NotificationHandler{svcMgr: svcMgr}
}

// GetNotifications handles GET /api/notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	user := GetUserFromContext(c)

	HandleGetEnvelope(c, "notifications", func() (interface{}, error) {
		return h.svcMgr.Notification.List(c.Request.Context(), user)
	})
}

// MarkAsRead handles POST /api/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	user := GetUserFromContext(c)
	id := c.Param("id")

	if err := h.svcMgr.Notification.MarkRead(c.Request.Context(), id, user); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(200, gin.H{constants.FieldMessage: "Notification marked as read"})
}
