package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var name string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "watch <code>",
		Short: "Join a room and stream its events",
		Long: `Connect to the server's WebSocket endpoint, join the room and print
every event as it arrives.

The watcher occupies a seat like any other player, so the room's
members will see it join and leave.

Events include:
  - joined_room: You are in the room
  - player_joined: Someone joined the room
  - player_left: Someone left the room
  - round_started: The host started a voting round
  - player_selected: A player picked a card
  - cards_revealed: Votes are on the table
  - round_reset: The host cleared the round
  - reveal_closed: The host dismissed the reveal overlay
  - became_host: Host authority moved to you

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchRoom(args[0], name, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&name, "name", "observer", "Display name to join with")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// wireMessage is the WebSocket envelope (matches API)
type wireMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// wireEvent is a received event annotated with arrival time
type wireEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func watchRoom(code, name string, jsonOutput bool) error {
	wsURL, err := websocketURL(cfg.ServerURL)
	if err != nil {
		return err
	}

	// Set up cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	// Unblock the read loop when interrupted. The close frame lets the
	// server remove the watcher from the room right away.
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	}()

	if err := sendJoin(conn, code, name); err != nil {
		return err
	}

	if !jsonOutput {
		fmt.Printf("Watching room %s as %s\n", strings.ToUpper(code), name)
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			// Interrupt is expected
			if ctx.Err() != nil {
				if !jsonOutput {
					fmt.Println("\nDisconnected")
				}
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if !jsonOutput {
					fmt.Println("Disconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		printFrame(raw, jsonOutput)
	}
}

func sendJoin(conn *websocket.Conn, code, name string) error {
	payload, err := json.Marshal(map[string]string{
		"roomCode": code,
		"name":     name,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal join: %w", err)
	}

	join, err := json.Marshal(wireMessage{Type: "join_room", Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal join: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, join); err != nil {
		return fmt.Errorf("join failed: %w", err)
	}
	return nil
}

func printFrame(raw []byte, jsonOutput bool) {
	now := time.Now()

	var msg wireMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		// Show unparseable frames rather than dropping them
		msg = wireMessage{Type: "unknown", Payload: raw}
	}

	if jsonOutput {
		evt := wireEvent{
			Time:  now,
			Event: msg.Type,
			Data:  msg.Payload,
		}
		jsonData, _ := json.Marshal(evt)
		fmt.Println(string(jsonData))
	} else {
		timestamp := now.Format("2006-01-02 15:04:05")
		// Truncate payloads that are too long for display
		displayData := string(msg.Payload)
		if len(displayData) > 100 {
			displayData = displayData[:100] + "..."
		}
		fmt.Printf("[%s] %s: %s\n", timestamp, msg.Type, displayData)
	}
}

// websocketURL derives the ws:// endpoint from the configured server URL
func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server URL scheme: %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}
