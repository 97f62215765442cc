package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "agripledge-backend/internal/adapter/http"
	idemp "agripledge-backend/internal/adapter/middleware"
	notifyadp "agripledge-backend/internal/adapter/notify"
	"agripledge-backend/internal/adapter/repository/mysql"
	"agripledge-backend/internal/config"
	"agripledge-backend/internal/infrastructure/cache"
	"agripledge-backend/internal/infrastructure/db"
	"agripledge-backend/internal/usecase/ledger"
	"agripledge-backend/internal/usecase/origination"
	"agripledge-backend/internal/usecase/revaluation"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	loans := mysql.NewLoanRepository(gdb)
	produce := mysql.NewProduceRepository(gdb)
	farmers := mysql.NewFarmerRepository(gdb)
	guow := mysql.NewGormUoW(gdb)
	gateway := notifyadp.NewRedisGateway(rdb, cfg.NotifyChan)

	originationUC := origination.NewUsecase(loans, produce, farmers, gateway, cfg.Lending)
	ledgerUC := ledger.NewUsecase(loans, guow, gateway)
	revaluationUC := revaluation.NewUsecase(loans, guow, cfg.Lending.MarginCallThreshold)

	h := httpadp.NewHandler()
	lh := httpadp.NewLoanHandler(originationUC, ledgerUC, revaluationUC)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	e.GET("/health", h.Health)

	idempTTL := time.Duration(cfg.IdempTTLSecs) * time.Second
	api := e.Group("", idemp.IdempotencyMiddleware(rdb, idempTTL))

	api.POST("/loans", lh.Apply)
	api.GET("/loans/pending", lh.ListPending)
	api.GET("/loans/active", lh.ListActive)
	api.GET("/loans/stats", lh.Stats)
	api.GET("/loans/:loan_id", lh.GetLoan)
	api.GET("/farmers/:farmer_id/loans", lh.ListByFarmer)
	api.POST("/loans/:loan_id/approve", lh.Approve)
	api.POST("/loans/:loan_id/reject", lh.Reject)
	api.POST("/loans/:loan_id/payments", lh.Repay)
	api.POST("/loans/:loan_id/revalue", lh.Revalue)
	api.POST("/loans/:loan_id/margin-check", lh.MarginCheck)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
