package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/khadamatapp/marketplace-api/config"
	"github.com/khadamatapp/marketplace-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	seedCategories(db)
	customerID := seedUser(db, "Ahmed Mohammed", "customer@example.com", "password123", "customer")
	providerUserID := seedUser(db, "Sara Al-Harbi", "provider@example.com", "password123", "provider")
	seedProvider(db, providerUserID)

	fmt.Printf("seeded: customer=%s provider_user=%s\n", customerID, providerUserID)
}

func seedCategories(db *sql.DB) {
	cats := []struct {
		Slug, Title, TitleAr string
	}{
		{"home-services", "Home Services", "خدمات منزلية"},
		{"design", "Design", "تصميم"},
		{"programming", "Programming", "برمجة"},
		{"marketing", "Marketing", "تسويق"},
		{"consulting", "Consulting", "استشارات"},
	}
	for _, c := range cats {
		if _, err := db.Exec(`
			INSERT INTO categories (slug, title, title_ar)
			VALUES ($1, $2, $3)
			ON CONFLICT (slug) DO UPDATE SET title = EXCLUDED.title, title_ar = EXCLUDED.title_ar
		`, c.Slug, c.Title, c.TitleAr); err != nil {
			log.Fatalf("failed to seed category %s: %v", c.Slug, err)
		}
	}
	fmt.Println("categories ensured")
}

func seedUser(db *sql.DB, name, email, password, userType string) string {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	var id string
	err = db.QueryRow(`
		INSERT INTO users (name, email, password_hash, user_type, initials)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name, email, hash, userType, helpers.DeriveInitials(name)).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)
	return id
}

func seedProvider(db *sql.DB, userID string) {
	var id string
	err := db.QueryRow(`
		INSERT INTO providers (user_id, name, location, categories, is_verified, description)
		VALUES ($1, $2, $3, $4::text[], $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, userID, "Sara Design Studio", "Riyadh", "{design}", true, "Brand and product design studio").Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed provider: %v", err)
	}
	fmt.Printf("seeded provider: id=%s\n", id)
}
