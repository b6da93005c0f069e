package handler

import (
	"net/http"

	"accounting-ledger-backend/internal/repository"

	"github.com/gin-gonic/gin"
)

type PartyHandler struct {
	parties *repository.PartyRepository
}

func NewPartyHandler(parties *repository.PartyRepository) *PartyHandler {
	return &PartyHandler{parties: parties}
}

func (h *PartyHandler) CreateCustomer(c *gin.Context) {
	var payload struct {
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		Currency    string `json:"currency"`
	}
	if err := c.BindJSON(&payload); err != nil || payload.DisplayName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.Currency == "" {
		payload.Currency = "CAD"
	}
	customer, err := h.parties.CreateCustomer(payload.DisplayName, payload.Email, payload.Currency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer created", "customer": customer})
}

func (h *PartyHandler) ListCustomers(c *gin.Context) {
	customers, err := h.parties.ActiveCustomers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *PartyHandler) CreateSupplier(c *gin.Context) {
	var payload struct {
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		Currency    string `json:"currency"`
	}
	if err := c.BindJSON(&payload); err != nil || payload.DisplayName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.Currency == "" {
		payload.Currency = "CAD"
	}
	supplier, err := h.parties.CreateSupplier(payload.DisplayName, payload.Email, payload.Currency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "supplier created", "supplier": supplier})
}

func (h *PartyHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.parties.ActiveSuppliers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers})
}
