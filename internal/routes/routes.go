package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	handler "accounting-ledger-backend/internal/handlers"
	"accounting-ledger-backend/internal/repository"
	"accounting-ledger-backend/internal/services/bankrules"
	"accounting-ledger-backend/internal/services/currency"
	"accounting-ledger-backend/internal/services/ledger"
	"accounting-ledger-backend/internal/services/reconciliation"
	"accounting-ledger-backend/internal/services/recurring"
	"accounting-ledger-backend/internal/services/reports"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, log *logrus.Logger) {
	ledgerRepo := repository.NewLedgerRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	billRepo := repository.NewBillRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	rateRepo := repository.NewExchangeRateRepository(db)
	recurringRepo := repository.NewRecurringRepository(db)
	bankTxnRepo := repository.NewBankTransactionRepository(db)
	bankRuleRepo := repository.NewBankRuleRepository(db)
	reconciliationRepo := repository.NewReconciliationRepository(db)
	partyRepo := repository.NewPartyRepository(db)

	journalizer := ledger.NewJournalizer(ledgerRepo, accountRepo, invoiceRepo, billRepo, expenseRepo, paymentRepo, transferRepo, log)
	reportEngine := reports.NewEngine(ledgerRepo, accountRepo, invoiceRepo, billRepo, expenseRepo, paymentRepo)
	converter := currency.NewConverter(rateRepo)
	scheduler := recurring.NewScheduler(recurringRepo, invoiceRepo, expenseRepo, billRepo, journalizer, log)
	ruleEngine := bankrules.NewEngine(bankRuleRepo, bankTxnRepo, log)
	reconciliationService := reconciliation.NewService(reconciliationRepo, bankTxnRepo, log)

	accountHandler := handler.NewAccountHandler(accountRepo, ledgerRepo)
	transactionHandler := handler.NewTransactionHandler(invoiceRepo, expenseRepo, billRepo, paymentRepo, transferRepo, journalizer)
	reportHandler := handler.NewReportHandler(reportEngine, ledgerRepo)
	currencyHandler := handler.NewCurrencyHandler(converter, rateRepo)
	recurringHandler := handler.NewRecurringHandler(scheduler, recurringRepo)
	bankingHandler := handler.NewBankingHandler(bankTxnRepo, bankRuleRepo, ruleEngine, reconciliationService)
	partyHandler := handler.NewPartyHandler(partyRepo)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	accounts := api.Group("/accounts")
	accounts.POST("", accountHandler.Create)
	accounts.GET("", accountHandler.List)
	accounts.GET("/:id", accountHandler.Get)
	accounts.PUT("/:id/name", accountHandler.Rename)
	accounts.PUT("/:id/parent", accountHandler.SetParent)
	accounts.POST("/:id/deactivate", accountHandler.Deactivate)

	invoices := api.Group("/invoices")
	invoices.POST("", transactionHandler.CreateInvoice)
	invoices.GET("", transactionHandler.ListInvoices)
	invoices.GET("/:id", transactionHandler.GetInvoice)
	invoices.POST("/:id/void", transactionHandler.VoidInvoice)

	expenses := api.Group("/expenses")
	expenses.POST("", transactionHandler.CreateExpense)
	expenses.POST("/:id/void", transactionHandler.VoidExpense)

	bills := api.Group("/bills")
	bills.POST("", transactionHandler.CreateBill)
	bills.POST("/:id/pay", transactionHandler.PayBill)
	bills.POST("/:id/void", transactionHandler.VoidBill)

	payments := api.Group("/payments")
	payments.POST("", transactionHandler.CreatePayment)
	payments.POST("/:id/void", transactionHandler.VoidPayment)

	transfers := api.Group("/transfers")
	transfers.POST("", transactionHandler.CreateTransfer)
	transfers.POST("/:id/void", transactionHandler.VoidTransfer)

	reportsGroup := api.Group("/reports")
	reportsGroup.GET("/trial-balance", reportHandler.TrialBalance)
	reportsGroup.GET("/profit-and-loss", reportHandler.ProfitAndLoss)
	reportsGroup.GET("/balance-sheet", reportHandler.BalanceSheet)
	reportsGroup.GET("/aging", reportHandler.Aging)
	reportsGroup.GET("/customer-balances", reportHandler.CustomerBalances)
	reportsGroup.GET("/supplier-balances", reportHandler.SupplierBalances)
	reportsGroup.GET("/general-ledger", reportHandler.GeneralLedger)
	reportsGroup.GET("/unposted", reportHandler.UnpostedTransactions)

	journal := api.Group("/journal-entries")
	journal.GET("", reportHandler.ListJournalEntries)
	journal.GET("/:id", reportHandler.GetJournalEntry)

	rates := api.Group("/exchange-rates")
	rates.POST("", currencyHandler.CreateRate)
	rates.GET("", currencyHandler.ListRates)
	rates.POST("/convert", currencyHandler.Convert)

	recurringGroup := api.Group("/recurring")
	recurringGroup.POST("", recurringHandler.Create)
	recurringGroup.POST("/process", recurringHandler.ProcessDue)
	recurringGroup.PUT("/:id/active", recurringHandler.SetActive)
	recurringGroup.GET("/log", recurringHandler.GenerationLog)

	banking := api.Group("/banking")
	banking.POST("/accounts/:accountId/import", bankingHandler.ImportTransactions)
	banking.POST("/accounts/:accountId/upload", bankingHandler.UploadTransactions)
	banking.GET("/transactions", bankingHandler.ListTransactions)
	banking.PUT("/transactions/:id", bankingHandler.UpdateTransaction)
	banking.POST("/transactions/:id/apply-rules", bankingHandler.ApplyRules)
	banking.POST("/transactions/:id/exclude", bankingHandler.ExcludeTransaction)
	banking.POST("/rules", bankingHandler.CreateRule)
	banking.GET("/rules", bankingHandler.ListRules)
	banking.PUT("/rules/:id", bankingHandler.UpdateRule)
	banking.DELETE("/rules/:id", bankingHandler.DeleteRule)

	recon := api.Group("/reconciliations")
	recon.POST("", bankingHandler.OpenReconciliation)
	recon.GET("/:id", bankingHandler.GetReconciliation)
	recon.POST("/:id/toggle", bankingHandler.ToggleReconciled)
	recon.POST("/:id/complete", bankingHandler.CompleteReconciliation)

	customers := api.Group("/customers")
	customers.POST("", partyHandler.CreateCustomer)
	customers.GET("", partyHandler.ListCustomers)

	suppliers := api.Group("/suppliers")
	suppliers.POST("", partyHandler.CreateSupplier)
	suppliers.GET("", partyHandler.ListSuppliers)
}
