package handler

import (
	"net/http"
	"time"

	"accounting-ledger-backend/internal/repository"
	"accounting-ledger-backend/internal/services/reports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportHandler struct {
	engine *reports.Engine
	ledger *repository.LedgerRepository
}

func NewReportHandler(engine *reports.Engine, ledger *repository.LedgerRepository) *ReportHandler {
	return &ReportHandler{engine: engine, ledger: ledger}
}

func queryDate(c *gin.Context, key string, fallback time.Time) (time.Time, bool) {
	s := c.Query(key)
	if s == "" {
		return fallback, true
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key + ", expected yyyy-mm-dd"})
		return time.Time{}, false
	}
	return t, true
}

func (h *ReportHandler) TrialBalance(c *gin.Context) {
	asOf, ok := queryDate(c, "as_of", time.Now())
	if !ok {
		return
	}
	tb, err := h.engine.TrialBalance(asOf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tb)
}

func (h *ReportHandler) ProfitAndLoss(c *gin.Context) {
	now := time.Now()
	start, ok := queryDate(c, "start_date", time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC))
	if !ok {
		return
	}
	end, ok := queryDate(c, "end_date", now)
	if !ok {
		return
	}
	pl, err := h.engine.ProfitAndLoss(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pl)
}

func (h *ReportHandler) BalanceSheet(c *gin.Context) {
	asOf, ok := queryDate(c, "as_of", time.Now())
	if !ok {
		return
	}
	bs, err := h.engine.BalanceSheet(asOf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bs)
}

func (h *ReportHandler) Aging(c *gin.Context) {
	kind := c.Query("kind")
	report, err := h.engine.Aging(kind, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) CustomerBalances(c *gin.Context) {
	balances, err := h.engine.CustomerBalances()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

func (h *ReportHandler) SupplierBalances(c *gin.Context) {
	balances, err := h.engine.SupplierBalances()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

func (h *ReportHandler) GeneralLedger(c *gin.Context) {
	now := time.Now()
	start, ok := queryDate(c, "start_date", time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC))
	if !ok {
		return
	}
	end, ok := queryDate(c, "end_date", now)
	if !ok {
		return
	}
	gl, err := h.engine.GeneralLedger(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": gl})
}

func (h *ReportHandler) UnpostedTransactions(c *gin.Context) {
	unposted, err := h.engine.UnpostedTransactions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unposted": unposted, "count": len(unposted)})
}

func (h *ReportHandler) ListJournalEntries(c *gin.Context) {
	now := time.Now()
	start, ok := queryDate(c, "start_date", now.AddDate(-1, 0, 0))
	if !ok {
		return
	}
	end, ok := queryDate(c, "end_date", now)
	if !ok {
		return
	}
	entries, err := h.ledger.EntriesInRange(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *ReportHandler) GetJournalEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry ID"})
		return
	}
	entry, err := h.ledger.GetEntry(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "journal entry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}
