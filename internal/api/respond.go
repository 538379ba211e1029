package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/safar/storefront/internal/auth"
	"github.com/safar/storefront/internal/checkout"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/remote"
	"github.com/safar/storefront/internal/session"
)

func respondError(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Message, "field": verr.Field})
		return
	}

	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var rerr *remote.Error
	switch {
	case errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, session.ErrNoCheckout):
		return http.StatusNotFound
	case errors.Is(err, database.ErrInvalidProduct),
		errors.Is(err, database.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrOutOfStock),
		errors.Is(err, checkout.ErrCartEmpty),
		errors.Is(err, checkout.ErrInvalidTransition),
		errors.Is(err, checkout.ErrWizardClosed):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrNotConfigured),
		errors.Is(err, session.ErrNoLedger),
		errors.Is(err, remote.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &rerr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
