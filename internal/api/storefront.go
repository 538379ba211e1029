package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/safar/storefront/internal/checkout"
	"github.com/safar/storefront/internal/models"
)

func (h *Handler) listProducts(c *gin.Context) {
	category := models.Category(c.Query("category"))

	products := []models.Product{}
	for _, p := range h.ctl.Products() {
		if category == "" || p.Category == category {
			products = append(products, p)
		}
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	product, err := h.ctl.Product(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) getCart(c *gin.Context) {
	view, err := h.ctl.Cart(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) clearCart(c *gin.Context) {
	view, err := h.ctl.ClearCart(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type cartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// A missing quantity adds one unit.
type addCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  *int  `json:"quantity" binding:"omitempty,min=1"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := h.ctl.AddToCart(c.Request.Context(), userID(c), req.ProductID, quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) setCartItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	view, err := h.ctl.SetCartQuantity(c.Request.Context(), userID(c), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	view, err := h.ctl.RemoveFromCart(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) getCustomerInfo(c *gin.Context) {
	customer, ok, err := h.ctl.CustomerInfo(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) startCheckout(c *gin.Context) {
	view, err := h.ctl.StartCheckout(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) getCheckout(c *gin.Context) {
	view, err := h.ctl.Checkout(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) closeCheckout(c *gin.Context) {
	h.ctl.CloseCheckout(userID(c))
	c.Status(http.StatusNoContent)
}

func (h *Handler) nextStep(c *gin.Context) {
	view, err := h.ctl.NextStep(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) backStep(c *gin.Context) {
	view, err := h.ctl.BackStep(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) setCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	view, err := h.ctl.SetCustomer(c.Request.Context(), userID(c), customer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type paymentRequest struct {
	Method      models.PaymentMethod `json:"payment_method" form:"payment_method"`
	TransferRef string               `json:"transfer_ref" form:"transfer_ref"`
}

// setPayment accepts JSON, or a multipart form when a slip image is
// uploaded in the "slip" field.
func (h *Handler) setPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	var slip *checkout.Slip
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var err error
		if slip, err = readSlip(c); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	view, err := h.ctl.SetPayment(c.Request.Context(), userID(c), req.Method, req.TransferRef, slip)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// readSlip returns nil when the form carries no slip file.
func readSlip(c *gin.Context) (*checkout.Slip, error) {
	header, err := c.FormFile("slip")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slip: %w", err)
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open slip: %w", err)
	}
	defer f.Close()

	// One byte over the limit is enough for validation to reject it.
	data, err := io.ReadAll(io.LimitReader(f, checkout.MaxSlipSize+1))
	if err != nil {
		return nil, fmt.Errorf("read slip: %w", err)
	}
	return &checkout.Slip{Filename: header.Filename, Data: data}, nil
}

func (h *Handler) confirm(c *gin.Context) {
	order, err := h.ctl.Confirm(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) getNotices(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctl.Notices(userID(c)))
}
