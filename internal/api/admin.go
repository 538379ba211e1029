package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/safar/storefront/internal/ledger"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/session"
	"github.com/safar/storefront/internal/store"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	token, expires, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		h.log.WithField("username", req.Username).Warn("admin login rejected")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": expires})
}

func (h *Handler) createProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p.ID = 0

	product, err := h.ctl.SaveProduct(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if _, err := h.ctl.Product(id); err != nil {
		respondError(c, err)
		return
	}

	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p.ID = id

	product, err := h.ctl.SaveProduct(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.ctl.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := store.Filter{Status: c.Query("status")}
	if filter.Status != "" && filter.Status != "all" && !models.OrderStatus(filter.Status).Valid() {
		badRequest(c, "unknown status "+filter.Status)
		return
	}
	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation(time.DateOnly, date, h.loc)
		if err != nil {
			badRequest(c, "date must be YYYY-MM-DD")
			return
		}
		filter.Day = day
	}

	c.JSON(http.StatusOK, h.ctl.ListOrders(filter, page, pageSize))
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := h.ctl.Order(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) setOrderStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	order, err := h.ctl.SetOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) report(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctl.Report())
}

func (h *Handler) adminNotices(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctl.Notices(session.AdminAudience))
}

func (h *Handler) getLedgerSettings(c *gin.Context) {
	settings, configured := h.ctl.LedgerSettings()
	c.JSON(http.StatusOK, gin.H{
		"owner":      settings.Owner,
		"repo":       settings.Repo,
		"configured": configured,
	})
}

type ledgerRequest struct {
	Token string `json:"token"`
	Owner string `json:"owner" binding:"required"`
	Repo  string `json:"repo" binding:"required"`
}

func (h *Handler) updateLedgerSettings(c *gin.Context) {
	var req ledgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "owner and repo are required")
		return
	}

	err := h.ctl.UpdateLedgerSettings(c.Request.Context(), ledger.Settings{
		Token: req.Token,
		Owner: req.Owner,
		Repo:  req.Repo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.getLedgerSettings(c)
}

func (h *Handler) ledgerOrders(c *gin.Context) {
	orders, err := h.ctl.LedgerOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
