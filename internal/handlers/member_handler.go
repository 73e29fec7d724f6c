package handlers

import (
	"net/http"

	"gym_manager/internal/middleware"
	"gym_manager/internal/repository"
	"gym_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	membershipService services.MembershipService
	paymentService    services.PaymentService
}

func NewMemberHandler(membershipService services.MembershipService, paymentService services.PaymentService) *MemberHandler {
	return &MemberHandler{membershipService: membershipService, paymentService: paymentService}
}

type EnrollRequest struct {
	FirstName             string  `json:"first_name"`
	LastName              string  `json:"last_name"`
	Email                 string  `json:"email"`
	Phone                 string  `json:"phone"`
	DateOfBirth           string  `json:"date_of_birth"`
	Gender                string  `json:"gender"`
	Address               string  `json:"address"`
	EmergencyContactName  string  `json:"emergency_contact_name"`
	EmergencyContactPhone string  `json:"emergency_contact_phone"`
	Notes                 string  `json:"notes"`
	Status                string  `json:"status"`
	PlanID                uint    `json:"plan_id"`
	StartDate             string  `json:"start_date"`
	PaymentAmount         float64 `json:"payment_amount"`
	PaymentMethod         string  `json:"payment_method"`
}

type RenewRequest struct {
	PlanID        uint    `json:"plan_id"`
	StartDate     string  `json:"start_date"`
	PaymentAmount float64 `json:"payment_amount"`
	PaymentMethod string  `json:"payment_method"`
	Description   string  `json:"description"`
}

type ProfileRequest struct {
	FirstName             *string `json:"first_name"`
	LastName              *string `json:"last_name"`
	Email                 *string `json:"email"`
	Phone                 *string `json:"phone"`
	DateOfBirth           *string `json:"date_of_birth"`
	Gender                *string `json:"gender"`
	Address               *string `json:"address"`
	EmergencyContactName  *string `json:"emergency_contact_name"`
	EmergencyContactPhone *string `json:"emergency_contact_phone"`
	Notes                 *string `json:"notes"`
}

func (h *MemberHandler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	startDate, err := parseDate("start_date", req.StartDate)
	if err != nil {
		respondError(c, err)
		return
	}
	in := services.EnrollInput{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		Gender:                req.Gender,
		Address:               req.Address,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		Notes:                 req.Notes,
		Status:                req.Status,
		PlanID:                req.PlanID,
		StartDate:             startDate,
		PaymentAmount:         req.PaymentAmount,
		PaymentMethod:         req.PaymentMethod,
	}
	if req.DateOfBirth != "" {
		dob, err := parseDate("date_of_birth", req.DateOfBirth)
		if err != nil {
			respondError(c, err)
			return
		}
		in.DateOfBirth = &dob
	}

	result, err := h.membershipService.Enroll(c.Request.Context(), middleware.AdminID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"member_code": result.Member.MemberCode,
		"member":      result.Member,
		"payment":     result.Payment,
		"history":     result.History,
	})
}

func (h *MemberHandler) ListMembers(c *gin.Context) {
	filter := repository.MemberFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	var err error
	if filter.PlanID, err = queryUint(c, "plan_id"); err != nil {
		respondError(c, err)
		return
	}
	if filter.ExpiringWithinDays, err = queryInt(c, "expiring_within_days"); err != nil {
		respondError(c, err)
		return
	}
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		respondError(c, err)
		return
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		respondError(c, err)
		return
	}

	members, total, err := h.membershipService.ListMembers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members, "total": total})
}

func (h *MemberHandler) GetMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	member, err := h.membershipService.GetMember(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) GetMemberByCode(c *gin.Context) {
	member, err := h.membershipService.GetMemberByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) UpdateProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in := services.ProfileInput{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		Gender:                req.Gender,
		Address:               req.Address,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		Notes:                 req.Notes,
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := parseDate("date_of_birth", *req.DateOfBirth)
		if err != nil {
			respondError(c, err)
			return
		}
		in.DateOfBirth = &dob
	}

	member, err := h.membershipService.UpdateProfile(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) SetStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.membershipService.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

func (h *MemberHandler) Renew(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req RenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	startDate, err := parseDate("start_date", req.StartDate)
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.membershipService.Renew(c.Request.Context(), middleware.AdminID(c), id, services.RenewInput{
		PlanID:        req.PlanID,
		StartDate:     startDate,
		PaymentAmount: req.PaymentAmount,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *MemberHandler) DeleteMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.membershipService.Delete(c.Request.Context(), middleware.AdminID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "deleted"})
}

func (h *MemberHandler) GetHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	history, err := h.membershipService.GetHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *MemberHandler) GetPayments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	payments, err := h.paymentService.GetMemberPayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
