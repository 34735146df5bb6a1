package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/DarmokhvalViktor/test-task-cs/config"
)

type seedUser struct {
	firstName   string
	lastName    string
	birthDate   string
	email       string
	address     string
	phoneNumber string
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	users := []seedUser{
		{"John", "Doe", "1990-05-14", "john.doe@example.com", "221B Baker Street", "123-456-7890"},
		{"Jane", "Smith", "1985-11-02", "jane.smith@example.com", "anywhere", "000-000-0000"},
		{"Taras", "Koval", "2001-03-29", "taras.koval@example.com", "Khreshchatyk 1, Kyiv", "380-000-0001"},
	}

	for _, u := range users {
		var id int64
		err := db.QueryRow(`
			INSERT INTO users (first_name, last_name, birth_date, email, address, phone_number)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (email) DO UPDATE SET updated_at = now()
			RETURNING id
		`, u.firstName, u.lastName, u.birthDate, u.email, u.address, u.phoneNumber).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}
		fmt.Printf("seeded user: id=%d email=%s\n", id, u.email)
	}
}
