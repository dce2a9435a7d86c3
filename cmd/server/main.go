package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	webAdapter "github.com/NordicManX/nordic-cred-sub000/internal/adapters/web"
	"github.com/NordicManX/nordic-cred-sub000/internal/app"
	"github.com/NordicManX/nordic-cred-sub000/internal/core"
	"github.com/NordicManX/nordic-cred-sub000/internal/db"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	settingsService := core.NewSettingsService(pool)
	checkoutService := core.NewCheckoutService(pool, settingsService)
	customerService := core.NewCustomerService(pool)
	productService := core.NewProductService(pool)
	expenseService := core.NewExpenseService(pool)
	reportingService := core.NewReportingService(pool, settingsService)
	userService := core.NewUserService(pool)

	svc := app.NewAppService(checkoutService, customerService, productService,
		expenseService, settingsService, reportingService, userService)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
