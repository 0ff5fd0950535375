package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/openbracket/arena/internal/database"
	"github.com/openbracket/arena/internal/lobby"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":        "seed.db",
		"MIGRATIONS_DIR": "./migrations",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	// Optional: point the seeder at a remote Turso database instead.
	config["TURSO_PRIMARY_URL"] = os.Getenv("TURSO_PRIMARY_URL")
	config["TURSO_AUTH_TOKEN"] = os.Getenv("TURSO_AUTH_TOKEN")
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	const batchSize = 100
	const numRooms = 1000

	log.Info("Preparing to insert dummy rooms...", "total", numRooms, "batch_size", batchSize)
	startTime := time.Now()

	names := []string{"Alice", "Bob", "Carol", "Dave"}
	inserted := 0
	for inserted < numRooms {
		tx, err := db.Begin()
		if err != nil {
			log.Fatalf("Failed to begin batch: %s", err)
		}

		for b := 0; b < batchSize && inserted < numRooms; b++ {
			roomID := uuid.New().String()
			code := fmt.Sprintf("%08d", rand.Intn(100000000))
			now := time.Now().Unix()

			_, err := tx.Exec(`
				INSERT INTO rooms (id, code, name, room_type, status, max_players, player_count, stage, owner_id, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, 4, 4, 0, ?, ?, ?)
			`, roomID, code, fmt.Sprintf("seed room %d", inserted), lobby.RoomTypeTournament, lobby.StatusReadyForStart, fmt.Sprintf("seed-player-%s-0", roomID), now, now)
			if err != nil {
				log.Fatalf("Failed to insert dummy room: %s", err)
			}

			for i, name := range names {
				_, err := tx.Exec(`
					INSERT INTO players (id, name, room_id, room_code, profile_color, bracket_position, score, created_at)
					VALUES (?, ?, ?, ?, ?, ?, 0, ?)
				`, fmt.Sprintf("seed-player-%s-%d", roomID, i), name, roomID, code, i%2+1, i+1, now)
				if err != nil {
					log.Fatalf("Failed to insert dummy player: %s", err)
				}
			}
			inserted++
		}

		if err := tx.Commit(); err != nil {
			log.Fatalf("Failed to commit batch: %s", err)
		}
		log.Info("Batch committed", "inserted", inserted)
	}

	log.Info("Seeding finished", "rooms", inserted, "duration", time.Since(startTime))
}
