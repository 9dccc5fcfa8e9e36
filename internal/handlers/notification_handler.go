package handlers

import (
	"net/http"

	"homefix_backend/internal/services"
	"homefix_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	*BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(base *BaseHandler, notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         base,
		notificationService: notificationService,
	}
}

// RegisterRoutes — все маршруты только для своего журнала
func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	notifications := r.Group("/notifications")
	notifications.Use(requireAuth)
	{
		notifications.GET("", h.GetUserNotifications)
		notifications.GET("/unread-count", h.GetUnreadCount)
		notifications.PUT("/read-all", h.MarkAllAsRead)
		notifications.PUT("/:id/read", h.MarkAsRead)
		notifications.GET("/settings", h.GetSettings)
		notifications.PUT("/settings", h.UpdateSettings)
	}
}

func (h *NotificationHandler) GetUserNotifications(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var query dto.ListNotificationsQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	list, err := h.notificationService.ListNotifications(c.Request.Context(), h.GetDB(c), p, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": list.Notifications,
		"total":         list.Total,
		"page":          list.Page,
		"page_size":     list.PageSize,
		"pages":         list.TotalPages,
	})
}

func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	count, err := h.notificationService.GetUnreadCount(c.Request.Context(), h.GetDB(c), p)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": count.Count})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	notification, err := h.notificationService.MarkAsRead(c.Request.Context(), h.GetDB(c), p, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "notification": notification})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	updated, err := h.notificationService.MarkAllAsRead(c.Request.Context(), h.GetDB(c), p)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}

func (h *NotificationHandler) GetSettings(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	settings, err := h.notificationService.GetSettings(c.Request.Context(), h.GetDB(c), p)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "settings": settings})
}

func (h *NotificationHandler) UpdateSettings(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateNotificationSettingsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	settings, err := h.notificationService.UpdateSettings(c.Request.Context(), h.GetDB(c), p, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "settings": settings})
}
