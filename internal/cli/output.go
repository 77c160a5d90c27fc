package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case RoomSummary:
		o.printRoomSummary(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type (matches API)
type HealthResult struct {
	Status   string `json:"status"`
	Rooms    int    `json:"rooms"`
	Sessions int    `json:"sessions"`
	Clients  int    `json:"clients"`
}

// RoomSummary response type (matches API)
type RoomSummary struct {
	RoomCode    string    `json:"roomCode"`
	State       string    `json:"state"`
	PlayerCount int       `json:"playerCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Rooms: %d\n", h.Rooms)
	fmt.Printf("Sessions: %d\n", h.Sessions)
	fmt.Printf("Clients: %d\n", h.Clients)
}

func (o *Output) printRoomSummary(r RoomSummary) {
	fmt.Printf("Room: %s\n", r.RoomCode)
	fmt.Printf("State: %s\n", r.State)
	fmt.Printf("Players: %d\n", r.PlayerCount)
	fmt.Printf("Created: %s\n", r.CreatedAt.Format(time.RFC3339))
}
