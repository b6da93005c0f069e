package main

import (
	"log"
	"time"

	"accounting-ledger-backend/internal/config"
	"accounting-ledger-backend/internal/logging"
	"accounting-ledger-backend/internal/models"
	"accounting-ledger-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	logger := logging.SetupLogging()
	db := config.InitDB()

	db.AutoMigrate(
		&models.Account{},
		&models.JournalEntry{},
		&models.JournalEntryLine{},
		&models.Customer{},
		&models.Supplier{},
		&models.Invoice{},
		&models.InvoiceLineItem{},
		&models.Bill{},
		&models.BillLineItem{},
		&models.Expense{},
		&models.ExpenseLineItem{},
		&models.Payment{},
		&models.PaymentApplication{},
		&models.AccountTransfer{},
		&models.ExchangeRate{},
		&models.RecurringTransaction{},
		&models.RecurringGenerationLog{},
		&models.BankTransaction{},
		&models.BankRule{},
		&models.Reconciliation{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, logger)

	r.Run(":8080")
}
