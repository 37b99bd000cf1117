// Command migrate creates the devices table. It reads DB_DSN, falling back
// to TEST_DATABASE_URL so the test database can be prepared the same way.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"inventory-dashboard/internal/store"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = os.Getenv("TEST_DATABASE_URL")
	}
	if dsn == "" {
		log.Fatal("DB_DSN or TEST_DATABASE_URL is required")
	}
	table := os.Getenv("DEVICES_TABLE")
	if table == "" {
		table = "devices"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.Open(ctx, dsn, table)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer st.Close()

	fmt.Println("Connected to database")
	if err := st.Migrate(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Printf("Table %s is ready\n", table)
}
