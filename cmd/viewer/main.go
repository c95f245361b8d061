package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/olekukonko/tablewriter"

	"gaming-hub/internal"
	"gaming-hub/repositories"
	"gaming-hub/repositories/postgres"
)

// Read-only inspector for the sessions table. Useful when debugging
// capacity issues without going through the HTTP API.
func main() {
	status := flag.String("status", "", "Filter by status (open, full, completed, cancelled)")
	game := flag.String("game", "", "Filter by game title (partial match)")
	platform := flag.String("platform", "", "Filter by platform (PC, PS5, Xbox, Switch)")
	flag.Parse()

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store := postgres.NewSessionStore(db)
	sessions, err := store.List(ctx, repositories.SessionFilter{
		Status:   *status,
		Game:     *game,
		Platform: *platform,
	})
	if err != nil {
		log.Fatal(err)
	}

	header := fmt.Sprintf(" %d session(s) ", len(sessions))
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(header))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Title", "Game", "Platform", "Status", "Slots", "Scheduled", "Host"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, s := range sessions {
		displayID := s.ID
		if len(displayID) > 8 {
			displayID = displayID[:8]
		}
		table.Append([]string{
			displayID,
			s.Title,
			s.Game,
			string(s.Platform),
			string(s.Status),
			fmt.Sprintf("%d/%d", s.ConfirmedCount(), s.MaxParticipants),
			s.ScheduledAt.Format("Jan 02 15:04"),
			s.HostID,
		})
	}
	table.Render()
}
