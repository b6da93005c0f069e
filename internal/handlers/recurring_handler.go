package handler

import (
	"encoding/json"
	"net/http"

	"accounting-ledger-backend/internal/models"
	"accounting-ledger-backend/internal/repository"
	"accounting-ledger-backend/internal/services/recurring"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RecurringHandler struct {
	scheduler *recurring.Scheduler
	recurring *repository.RecurringRepository
}

func NewRecurringHandler(scheduler *recurring.Scheduler, recurringRepo *repository.RecurringRepository) *RecurringHandler {
	return &RecurringHandler{scheduler: scheduler, recurring: recurringRepo}
}

func (h *RecurringHandler) Create(c *gin.Context) {
	var payload struct {
		TemplateName    string          `json:"template_name"`
		TransactionType string          `json:"transaction_type"`
		Frequency       string          `json:"frequency"`
		IntervalCount   int             `json:"interval_count"`
		StartDate       string          `json:"start_date"`
		EndDate         string          `json:"end_date"`
		TemplateData    json.RawMessage `json:"template_data"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	startDate, err := parseDate(payload.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, expected yyyy-mm-dd"})
		return
	}

	rec := &models.RecurringTransaction{
		TemplateName:    payload.TemplateName,
		TransactionType: payload.TransactionType,
		Frequency:       models.Frequency(payload.Frequency),
		IntervalCount:   payload.IntervalCount,
		StartDate:       startDate,
		TemplateData:    datatypes.JSON(payload.TemplateData),
	}
	if payload.EndDate != "" {
		endDate, err := parseDate(payload.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, expected yyyy-mm-dd"})
			return
		}
		rec.EndDate = &endDate
	}

	if err := h.scheduler.CreateTemplate(rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recurring template created", "template": rec})
}

func (h *RecurringHandler) ProcessDue(c *gin.Context) {
	report, err := h.scheduler.ProcessDue()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recurring processing completed", "report": report})
}

func (h *RecurringHandler) SetActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template ID"})
		return
	}
	var payload struct {
		Active bool `json:"active"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.recurring.SetActive(id, payload.Active); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "template updated"})
}

func (h *RecurringHandler) GenerationLog(c *gin.Context) {
	var templateID *uuid.UUID
	if s := c.Query("template_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template ID"})
			return
		}
		templateID = &id
	}
	logs, err := h.recurring.GenerationLog(templateID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"log": logs})
}
