// Command kitchen-board shows active orders in the terminal and refreshes
// them on a fixed interval.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"tableorder-backend/client"
	"tableorder-backend/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("api", envOr("KITCHEN_API_URL", "http://localhost:8080"), "base URL of the ordering API")
	interval := flag.Duration("interval", client.DefaultPollInterval, "how often to refresh")
	clearScreen := flag.Bool("clear", true, "clear the screen before each refresh")
	flag.Parse()

	log := utils.NewLogger(envOr("LOG_LEVEL", "warn"), os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	board := client.NewKitchenBoard(client.NewClient(*apiURL, nil), *interval)
	board.OnUpdate = func(b client.Board) {
		if *clearScreen {
			fmt.Print("\033[H\033[2J")
		}
		render(os.Stdout, b)
	}
	board.OnError = func(err error) {
		log.Warn("refresh failed", "api", *apiURL, "error", err)
	}

	if err := board.Run(ctx); err != nil {
		log.Error("kitchen board stopped", "error", err)
		os.Exit(1)
	}
}

func render(w io.Writer, b client.Board) {
	fmt.Fprintf(w, "Kitchen board  %s  (%d active)\n\n", b.UpdatedAt.Format(time.Kitchen), b.Active())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, column := range []struct {
		title   string
		entries []client.BoardEntry
	}{
		{"PENDING", b.Pending},
		{"PREPARING", b.Preparing},
		{"READY", b.Ready},
	} {
		fmt.Fprintf(tw, "%s (%d)\t\t\t\n", column.title, len(column.entries))
		for _, e := range column.entries {
			age := fmt.Sprintf("%d min", e.AgeMinutes)
			if e.Overdue() {
				age += " !"
			}
			fmt.Fprintf(tw, "  table %d\t%s\t%s\t%s\n", e.TableNumber, e.OrderID.String()[:8], age, strings.Join(e.Items, ", "))
			if e.SpecialInstructions != "" {
				fmt.Fprintf(tw, "\t\t\tnote: %s\n", e.SpecialInstructions)
			}
		}
		fmt.Fprintln(tw, "\t\t\t")
	}
	tw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
