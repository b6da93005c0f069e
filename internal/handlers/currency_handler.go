package handler

import (
	"errors"
	"net/http"
	"time"

	"accounting-ledger-backend/internal/repository"
	"accounting-ledger-backend/internal/services/currency"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CurrencyHandler struct {
	converter *currency.Converter
	rates     *repository.ExchangeRateRepository
}

func NewCurrencyHandler(converter *currency.Converter, rates *repository.ExchangeRateRepository) *CurrencyHandler {
	return &CurrencyHandler{converter: converter, rates: rates}
}

func (h *CurrencyHandler) CreateRate(c *gin.Context) {
	var payload struct {
		FromCurrency  string          `json:"from_currency"`
		ToCurrency    string          `json:"to_currency"`
		Rate          decimal.Decimal `json:"rate"`
		EffectiveDate string          `json:"effective_date"`
		Source        string          `json:"source"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.FromCurrency == "" || payload.ToCurrency == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency pair required"})
		return
	}
	if !payload.Rate.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rate must be positive"})
		return
	}
	effectiveDate, err := parseDate(payload.EffectiveDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid effective date, expected yyyy-mm-dd"})
		return
	}

	rate, err := h.rates.Create(payload.FromCurrency, payload.ToCurrency, payload.Rate, effectiveDate, payload.Source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "exchange rate saved", "rate": rate})
}

func (h *CurrencyHandler) ListRates(c *gin.Context) {
	rates, err := h.rates.List(c.Query("from_currency"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": rates})
}

func (h *CurrencyHandler) Convert(c *gin.Context) {
	var payload struct {
		Amount decimal.Decimal `json:"amount"`
		From   string          `json:"from"`
		To     string          `json:"to"`
		AsOf   string          `json:"as_of"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	asOf := time.Now()
	if payload.AsOf != "" {
		t, err := time.Parse(dateLayout, payload.AsOf)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid as_of date, expected yyyy-mm-dd"})
			return
		}
		asOf = t
	}

	resolution, err := h.converter.Rate(payload.From, payload.To, asOf)
	if err != nil {
		if errors.Is(err, currency.ErrRateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	converted := payload.Amount.Mul(resolution.Rate).Round(2)
	c.JSON(http.StatusOK, gin.H{
		"amount":    payload.Amount,
		"converted": converted,
		"rate":      resolution.Rate,
		"source":    resolution.Source,
	})
}
