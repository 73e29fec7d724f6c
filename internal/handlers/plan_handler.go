package handlers

import (
	"net/http"

	"gym_manager/internal/models"
	"gym_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService services.PlanService
}

func NewPlanHandler(planService services.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

type PlanRequest struct {
	Name         string   `json:"name"`
	DurationDays int      `json:"duration_days"`
	Price        float64  `json:"price"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
	Status       string   `json:"status"`
}

func (r PlanRequest) input() services.PlanInput {
	return services.PlanInput{
		Name:         r.Name,
		DurationDays: r.DurationDays,
		Price:        r.Price,
		Description:  r.Description,
		Features:     r.Features,
		Status:       r.Status,
	}
}

type BulkPlanRequest struct {
	Action string `json:"action"` // activate, deactivate, delete
	IDs    []uint `json:"ids"`
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.planService.CreatePlan(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.planService.UpdatePlan(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.planService.ListPlans(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *PlanHandler) ListActivePlans(c *gin.Context) {
	plans, err := h.planService.ListActivePlans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *PlanHandler) DuplicatePlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	plan, err := h.planService.DuplicatePlan(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.planService.DeletePlan(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "deleted"})
}

func (h *PlanHandler) BulkAction(c *gin.Context) {
	var req BulkPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	switch req.Action {
	case "activate", "deactivate":
		status := string(models.PlanActive)
		if req.Action == "deactivate" {
			status = string(models.PlanInactive)
		}
		updated, err := h.planService.BulkSetStatus(ctx, req.IDs, status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"action": req.Action, "updated": updated})
	case "delete":
		result, err := h.planService.BulkDelete(ctx, req.IDs)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	default:
		respondError(c, &services.ValidationError{Field: "action", Message: "must be activate, deactivate or delete"})
	}
}
