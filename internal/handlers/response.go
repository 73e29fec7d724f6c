package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"gym_manager/internal/services"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// respondError maps service errors onto HTTP statuses. Datastore details only
// reach the log.
func respondError(c *gin.Context, err error) {
	var (
		validation   *services.ValidationError
		notFound     *services.NotFoundError
		insufficient *services.InsufficientStockError
		invalid      *services.InvalidStateError
		persistence  *services.PersistenceError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":      insufficient.Error(),
			"product_id": insufficient.ProductID,
			"requested":  insufficient.Requested,
			"available":  insufficient.Available,
		})
	case errors.As(err, &invalid):
		c.JSON(http.StatusConflict, gin.H{"error": invalid.Error()})
	case errors.As(err, &persistence):
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), persistence.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": persistence.Error()})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// parseDate accepts YYYY-MM-DD; an empty value yields the zero time.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &services.ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return t, nil
}

func queryUint(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, &services.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	id := uint(v)
	return &id, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &services.ValidationError{Field: name, Message: "must be an integer"}
	}
	return v, nil
}
