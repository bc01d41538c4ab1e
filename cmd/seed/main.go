// seed loads a minimal demo dataset: an admin user, a cashier, a walk-in
// customer, a supplier, and a handful of products. Safe to re-run; every
// insert is keyed on a natural identifier.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"
	"os"

	"retail-pos/internal/db"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "changeme"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding users...")
	_, err = tx.Exec(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES
			('Admin', 'admin@example.com', $1, 'admin'),
			('Cashier', 'cashier@example.com', $1, 'cashier')
		ON CONFLICT (email) DO UPDATE
		  SET password_hash = EXCLUDED.password_hash,
		      is_active = true;
	`, string(hash))
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Println("Seeding customer and supplier...")
	_, err = tx.Exec(ctx, `
		INSERT INTO customers (name)
		SELECT 'Walk-in Customer'
		WHERE NOT EXISTS (SELECT 1 FROM customers WHERE name = 'Walk-in Customer');
	`)
	if err != nil {
		log.Fatalf("Failed to seed customer: %v", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO suppliers (name, phone)
		SELECT 'General Supplies Co', '012-345-678'
		WHERE NOT EXISTS (SELECT 1 FROM suppliers WHERE name = 'General Supplies Co');
	`)
	if err != nil {
		log.Fatalf("Failed to seed supplier: %v", err)
	}

	log.Println("Seeding products...")
	_, err = tx.Exec(ctx, `
		INSERT INTO products (name, sku, description, price, cost, stock_quantity, reorder_level)
		VALUES
			('Drinking Water 500ml', 'WTR-500', 'Bottled water', 0.50, 0.20, 200, 48),
			('Instant Noodles', 'NDL-001', 'Single pack', 0.75, 0.40, 150, 24),
			('Rice 5kg', 'RCE-5KG', 'Jasmine rice', 8.50, 6.75, 40, 10),
			('Cooking Oil 1L', 'OIL-1L', NULL, 3.25, 2.40, 60, 12),
			('Canned Fish', 'FSH-CAN', 'Sardines in tomato sauce', 1.80, 1.10, 80, 20)
		ON CONFLICT (sku) DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit seed: %v", err)
	}
	log.Println("Seed complete.")
}
