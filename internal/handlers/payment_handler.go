package handlers

import (
	"net/http"

	"gym_manager/internal/middleware"
	"gym_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

type PaymentRequest struct {
	MemberID         uint    `json:"member_id"`
	Amount           float64 `json:"amount"`
	PaymentDate      string  `json:"payment_date"`
	PaymentMethod    string  `json:"payment_method"`
	Description      string  `json:"description"`
	UpdateMembership bool    `json:"update_membership"`
	PlanID           uint    `json:"plan_id"`
	StartDate        string  `json:"start_date"`
}

func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	paymentDate, err := parseDate("payment_date", req.PaymentDate)
	if err != nil {
		respondError(c, err)
		return
	}
	startDate, err := parseDate("start_date", req.StartDate)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), middleware.AdminID(c), services.RecordPaymentInput{
		MemberID:         req.MemberID,
		Amount:           req.Amount,
		PaymentDate:      paymentDate,
		PaymentMethod:    req.PaymentMethod,
		Description:      req.Description,
		UpdateMembership: req.UpdateMembership,
		PlanID:           req.PlanID,
		StartDate:        startDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	payment, err := h.paymentService.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// ListPayments requires from and to (YYYY-MM-DD, inclusive).
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	from, err := parseDate("from", c.Query("from"))
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := parseDate("to", c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	payments, err := h.paymentService.GetPaymentsByDateRange(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
