package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/Netflix/go-env"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lib/pq"

	"gaming-hub/auth"
	"gaming-hub/domain"
	"gaming-hub/internal"
	"gaming-hub/repositories/postgres"
)

type demoUser struct {
	id        string
	username  string
	name      string
	platforms []string
	games     []string
}

var demoUsers = []demoUser{
	{"u-alice", "alice", "Alice Martin", []string{"PC"}, []string{"Destiny 2", "Valorant"}},
	{"u-bob", "bob", "Bob Chen", []string{"PC", "PS5"}, []string{"Destiny 2", "Elden Ring"}},
	{"u-carol", "carol", "Carol Diaz", []string{"Switch"}, []string{"Mario Kart 8", "Splatoon 3"}},
	{"u-dave", "dave", "Dave Osei", []string{"Xbox"}, []string{"Halo Infinite", "Forza Horizon 5"}},
}

// Seeds a handful of profiles, friendships and sessions so the API and the
// viewer have something to show on a fresh database.
func main() {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db, err := sql.Open("postgres", config.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Seeding test data...")

	hash, err := auth.HashPassword("correct-horse-battery")
	if err != nil {
		log.Fatal(err)
	}
	for _, u := range demoUsers {
		_, err := db.ExecContext(ctx, `
			INSERT INTO profiles (id, username, name, password_hash, platforms, games)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			u.id, u.username, u.name, hash, pq.Array(u.platforms), pq.Array(u.games))
		if err != nil {
			log.Fatalf("Failed to seed profile %s: %v", u.username, err)
		}
	}
	fmt.Printf("Profiles: %d (password: correct-horse-battery)\n", len(demoUsers))

	// alice <-> bob are friends, carol has a pending request to alice
	if _, err := db.ExecContext(ctx, `
		INSERT INTO friends (user_a, user_b) VALUES ('u-alice', 'u-bob')
		ON CONFLICT DO NOTHING`); err != nil {
		log.Fatalf("Failed to seed friendship: %v", err)
	}
	if _, err := db.ExecContext(ctx, `
		INSERT INTO friend_requests (id, from_id, to_id) VALUES ($1, 'u-carol', 'u-alice')
		ON CONFLICT (from_id, to_id) DO NOTHING`, uuid.NewString()); err != nil {
		log.Fatalf("Failed to seed friend request: %v", err)
	}

	sessions := postgres.NewSessionStore(db)
	seedSessions := []*domain.Session{
		{
			ID:              uuid.NewString(),
			Title:           "Friday Raid Night",
			Game:            "Destiny 2",
			Platform:        domain.PlatformPC,
			HostID:          "u-alice",
			MaxParticipants: 5,
			ScheduledAt:     nextFriday(20),
			Duration:        180,
			Description:     "Fresh run, mic required",
			Status:          domain.SessionOpen,
		},
		{
			ID:              uuid.NewString(),
			Title:           "Casual Kart Sunday",
			Game:            "Mario Kart 8",
			Platform:        domain.PlatformSwitch,
			HostID:          "u-carol",
			MaxParticipants: 7,
			ScheduledAt:     time.Now().Add(72 * time.Hour).Truncate(time.Hour),
			Duration:        90,
			Status:          domain.SessionOpen,
		},
		{
			ID:              uuid.NewString(),
			Title:           "Ranked Grind (invite only)",
			Game:            "Valorant",
			Platform:        domain.PlatformPC,
			HostID:          "u-bob",
			MaxParticipants: 4,
			ScheduledAt:     time.Now().Add(24 * time.Hour).Truncate(time.Hour),
			Duration:        120,
			IsPrivate:       true,
			Status:          domain.SessionOpen,
		},
	}
	for _, s := range seedSessions {
		s.CreatedAt = time.Now()
		if err := sessions.Create(ctx, s); err != nil {
			log.Fatalf("Failed to seed session %q: %v", s.Title, err)
		}
	}
	fmt.Printf("Sessions: %d\n", len(seedSessions))

	fmt.Println("Done. Start the server and list /api/sessions to check.")
}

func nextFriday(hour int) time.Time {
	t := time.Now()
	for t.Weekday() != time.Friday {
		t = t.Add(24 * time.Hour)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, time.Local)
}
