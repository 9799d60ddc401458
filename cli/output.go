package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"roomrec-server/models"
)

var (
	headerColor = color.New(color.Bold, color.Underline)
	bestColor   = color.New(color.FgGreen, color.Bold)
	rowColor    = color.New(color.Reset)
	dimColor    = color.New(color.FgHiBlack)
	warnColor   = color.New(color.FgYellow)
)

// PrintRanking writes the ranked rooms as a table; the best room is highlighted.
func PrintRanking(w io.Writer, slot string, temperature float64, rooms []models.RankedRoom) {
	headerColor.Fprintf(w, "Rooms for %s at %.1f°C\n", slot, temperature)
	fmt.Fprintf(w, "%-5s %-20s %10s %8s %8s %8s %8s\n", "RANK", "ROOM", "SCORE", "TEMP", "CO2", "HUM", "SOUND")
	for i, r := range rooms {
		c := rowColor
		if i == 0 {
			c = bestColor
		}
		c.Fprintf(w, "%-5.0f %-20s %10.3f %8s %8s %8s %8s\n",
			r.Rank, r.RoomName, r.Score,
			r.Conditions.Temperature, r.Conditions.CO2Level,
			r.Conditions.Humidity, r.Conditions.SoundLevel)
	}
	dimColor.Fprintf(w, "%d room(s)\n", len(rooms))
}

// PrintNoMatch explains an empty recommendation.
func PrintNoMatch(w io.Writer, nm models.NoMatchResponse) {
	warnColor.Fprintln(w, nm.Error)
	dimColor.Fprintf(w, "reason: %s / %s\n", nm.Reason, nm.Detail)
	if len(nm.AvailableTemperatures) > 0 {
		temps := make([]string, len(nm.AvailableTemperatures))
		for i, t := range nm.AvailableTemperatures {
			temps[i] = fmt.Sprintf("%g", t)
		}
		fmt.Fprintf(w, "Available temperatures within acceptable range: %s\n", strings.Join(temps, ", "))
	}
}
