package httpinterface

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/incubator-tracker/internal/core/application"
	"github.com/tdex-network/incubator-tracker/pkg/explorer"
)

type depositResponse struct {
	User      string          `json:"user"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
	Stale     bool            `json:"stale"`
}

type healthResponse struct {
	Status string `json:"status"`
	Slot   uint64 `json:"slot,omitempty"`
	Error  string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type depositHandler struct {
	depositSvc application.DepositService
	explorer   explorer.Service
}

func newDepositHandler(
	depositSvc application.DepositService, explorerSvc explorer.Service,
) *depositHandler {
	return &depositHandler{depositSvc, explorerSvc}
}

func (h *depositHandler) GetUserDeposit(c *gin.Context) {
	user := c.Param("user")

	info, err := h.depositSvc.GetUserDepositInfo(c.Request.Context(), user)
	if err != nil {
		status := httpStatus(err)
		if status == http.StatusInternalServerError {
			log.WithError(err).Errorf("failed to get deposit of %s", user)
		}
		c.JSON(status, errorResponse{err.Error()})
		return
	}

	c.JSON(http.StatusOK, depositResponse{
		User:      info.User,
		Amount:    info.Amount,
		Timestamp: info.Timestamp.UTC(),
		Stale:     info.Stale,
	})
}

func (h *depositHandler) Health(c *gin.Context) {
	if h.explorer == nil {
		c.JSON(http.StatusOK, healthResponse{Status: "ok"})
		return
	}

	slot, err := h.explorer.GetSlot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, healthResponse{
			Status: "unavailable",
			Error:  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Slot: slot})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, application.ErrInvalidAccount):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrNoDataAvailable),
		errors.Is(err, application.ErrSourceUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
