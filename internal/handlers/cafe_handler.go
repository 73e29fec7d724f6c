package handlers

import (
	"net/http"

	"gym_manager/internal/middleware"
	"gym_manager/internal/repository"
	"gym_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type CafeHandler struct {
	productService services.CafeProductService
	orderService   services.CafeOrderService
}

func NewCafeHandler(productService services.CafeProductService, orderService services.CafeOrderService) *CafeHandler {
	return &CafeHandler{productService: productService, orderService: orderService}
}

type ProductRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	CostPrice     float64 `json:"cost_price"`
	StockQuantity int     `json:"stock_quantity"`
	Status        string  `json:"status"`
}

func (r ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Category:      r.Category,
		Price:         r.Price,
		CostPrice:     r.CostPrice,
		StockQuantity: r.StockQuantity,
		Status:        r.Status,
	}
}

type OrderItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type OrderRequest struct {
	MemberID      *uint              `json:"member_id"`
	Items         []OrderItemRequest `json:"items"`
	PaymentMethod string             `json:"payment_method"`
	TotalAmount   *float64           `json:"total_amount"`
}

func (h *CafeHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.productService.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct ignores stock_quantity; use the restock endpoint.
func (h *CafeHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.productService.UpdateProduct(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CafeHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CafeHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context(), repository.ProductFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *CafeHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "deleted"})
}

func (h *CafeHandler) Restock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.orderService.Restock(c.Request.Context(), middleware.AdminID(c), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CafeHandler) PlaceOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in := services.PlaceOrderInput{
		MemberID:      req.MemberID,
		PaymentMethod: req.PaymentMethod,
		ClientTotal:   req.TotalAmount,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, services.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), middleware.AdminID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *CafeHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListOrders filters by from/to (YYYY-MM-DD, to inclusive) and status.
func (h *CafeHandler) ListOrders(c *gin.Context) {
	filter := repository.OrderFilter{Status: c.Query("status")}
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
	if !from.IsZero() {
		filter.From = &from
	}
	if !to.IsZero() {
		next := to.AddDate(0, 0, 1)
		filter.To = &next
	}
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		respondError(c, err)
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *CafeHandler) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.CancelOrder(c.Request.Context(), middleware.AdminID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
