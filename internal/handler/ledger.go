package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ledgerbot/internal/ledger"
)

// LedgerHandler exposes read-only views over the same aggregator the bot
// uses; mutation stays chat-only.
type LedgerHandler struct {
	Ledger *ledger.Service
}

func (h *LedgerHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1")
	g.GET("/recap", h.recap)
	g.GET("/leaderboard", h.leaderboard)
	g.GET("/trades", h.listTrades)
	g.GET("/positions/summary", h.positionSummary)
}

func (h *LedgerHandler) recap(c *gin.Context) {
	if h.Ledger == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	period := ledger.PeriodDaily
	if raw := strings.TrimSpace(c.Query("period")); raw != "" {
		parsed, ok := ledger.ParsePeriod(strings.ToLower(raw))
		if !ok {
			Error(c, http.StatusBadRequest, "period must be daily, weekly or monthly", nil)
			return
		}
		period = parsed
	}
	recap, err := h.Ledger.Recap(c.Request.Context(), period)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, recap, nil)
}

func (h *LedgerHandler) leaderboard(c *gin.Context) {
	if h.Ledger == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	rows, err := h.Ledger.Leaderboard(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, rows, map[string]any{"count": len(rows)})
}

func (h *LedgerHandler) listTrades(c *gin.Context) {
	if h.Ledger == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	filter := ledger.TradeFilter{
		User:   strings.TrimSpace(c.Query("user")),
		Symbol: strings.TrimSpace(c.Query("symbol")),
		From:   strings.TrimSpace(c.Query("from")),
		To:     strings.TrimSpace(c.Query("to")),
	}
	items, err := h.Ledger.ListTrades(c.Request.Context(), filter)
	if err != nil {
		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			Error(c, http.StatusBadRequest, verr.Msg, nil)
			return
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func (h *LedgerHandler) positionSummary(c *gin.Context) {
	if h.Ledger == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	summary, err := h.Ledger.PositionSummaryAll(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, summary, nil)
}
