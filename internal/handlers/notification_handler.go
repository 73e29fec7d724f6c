package handlers

import (
	"net/http"
	"time"

	"gym_manager/internal/middleware"
	"gym_manager/internal/models"
	"gym_manager/internal/repository"
	"gym_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService services.NotificationService
	membershipService   services.MembershipService
}

func NewNotificationHandler(notificationService services.NotificationService, membershipService services.MembershipService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, membershipService: membershipService}
}

type SendSMSRequest struct {
	MemberID *uint  `json:"member_id"`
	Phone    string `json:"phone"`
	Message  string `json:"message"`
}

type BroadcastRequest struct {
	Status             string `json:"status"`
	PlanID             *uint  `json:"plan_id"`
	Search             string `json:"search"`
	ExpiringWithinDays int    `json:"expiring_within_days"`
	Message            string `json:"message"`
}

func (h *NotificationHandler) SendSMS(c *gin.Context) {
	var req SendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := h.notificationService.Send(c.Request.Context(), services.SendRequest{
		MemberID:  req.MemberID,
		Phone:     req.Phone,
		Message:   req.Message,
		Type:      string(models.MessageCustom),
		CreatedBy: middleware.AdminID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	progress, err := h.notificationService.Broadcast(c.Request.Context(), repository.MemberFilter{
		Status:             req.Status,
		PlanID:             req.PlanID,
		Search:             req.Search,
		ExpiringWithinDays: req.ExpiringWithinDays,
		Now:                time.Now(),
	}, req.Message, middleware.AdminID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, progress)
}

func (h *NotificationHandler) BroadcastStatus(c *gin.Context) {
	progress, err := h.notificationService.BroadcastStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *NotificationHandler) GetLogs(c *gin.Context) {
	filter := repository.NotificationLogFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
	}
	var err error
	if filter.MemberID, err = queryUint(c, "member_id"); err != nil {
		respondError(c, err)
		return
	}
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		respondError(c, err)
		return
	}
	logs, err := h.notificationService.GetLogs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	notifications, err := h.notificationService.GetNotifications(c.Request.Context(), c.Query("unread") == "true", limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.notificationService.MarkNotificationRead(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_read": true})
}

func (h *NotificationHandler) RunExpiryCheck(c *gin.Context) {
	result, err := h.membershipService.ComputeExpiryNotifications(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
