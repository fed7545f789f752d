package handler

import (
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	WalletSvc      ports.WalletService
	CurrencyRepo   ports.CurrencyRepository
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	v1 := r.Group("/api/v1")

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallets := v1.Group("/wallets")
	{
		wallets.POST("", walletHandler.Create)
		wallets.GET("", walletHandler.List)
		wallets.GET("/:address", walletHandler.Get)
		wallets.GET("/:address/balances", walletHandler.Balances)
		wallets.GET("/:address/movements", walletHandler.Movements)
		wallets.GET("/:address/conversions", walletHandler.Conversions)
		wallets.GET("/:address/transfers", walletHandler.Transfers)
		wallets.POST("/:address/block", walletHandler.Block)
		wallets.DELETE("/:address", walletHandler.Remove)
	}

	currencyHandler := NewCurrencyHandler(deps.CurrencyRepo)
	currencies := v1.Group("/currencies")
	{
		currencies.POST("", currencyHandler.Create)
		currencies.GET("", currencyHandler.List)
	}

	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	ledger := v1.Group("/ledger")
	{
		ledger.POST("/deposit", ledgerHandler.Deposit)
		ledger.POST("/withdraw", ledgerHandler.Withdraw)
		ledger.POST("/convert", ledgerHandler.Convert)
		ledger.POST("/transfer", ledgerHandler.Transfer)
	}

	return r
}
