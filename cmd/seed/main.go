// seed applies migrations/schema.sql and inserts the records the app
// cannot run without: the settings singleton and an initial admin user.
// Safe to re-run; existing rows are left alone.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/NordicManX/nordic-cred-sub000/internal/db"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	schemaPath := os.Getenv("SCHEMA_PATH")
	if schemaPath == "" {
		schemaPath = "migrations/schema.sql"
	}
	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		log.Fatalf("Failed to read schema %s: %v", schemaPath, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Applying schema...")
	if _, err := tx.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	log.Println("Ensuring settings row...")
	managerPassword := os.Getenv("SEED_MANAGER_PASSWORD")
	if managerPassword == "" {
		managerPassword = "gerente"
	}
	managerHash, err := bcrypt.GenerateFromPassword([]byte(managerPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash manager password: %v", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO settings (id, daily_goal, commission_rate, points_per_currency, point_value, manager_password_hash)
		VALUES (1, 500.00, 0.05, 1.0, 1.00, $1)
		ON CONFLICT (id) DO NOTHING
	`, string(managerHash))
	if err != nil {
		log.Fatalf("Failed to seed settings: %v", err)
	}

	log.Println("Ensuring admin user...")
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin"
	}
	adminHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ('admin', '', $1, 'admin')
		ON CONFLICT (username) DO NOTHING
	`, string(adminHash))
	if err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed complete.")
}
