package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	roomName   string
	roomType   string
	maxPlayers int
	playerName string
)

func init() {
	createRoomCmd.Flags().StringVar(&roomName, "name", "my room", "The room name")
	createRoomCmd.Flags().StringVar(&roomType, "type", "MATCH", "The room type: MATCH, TOURNAMENT or SINGLE_PLAYER")
	createRoomCmd.Flags().IntVar(&maxPlayers, "size", 2, "The number of players the room holds")
	createRoomCmd.Flags().StringVar(&playerName, "player", "cli-player", "The owner's display name")
	joinCmd.Flags().StringVar(&playerName, "player", "cli-player", "The joining player's display name")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(createRoomCmd)
	rootCmd.AddCommand(getRoomCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(leaveCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(matchesCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/metrics", nil)
	},
}

var createRoomCmd = &cobra.Command{
	Use:   "create-room",
	Short: "Create a new room and seat yourself as its owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("POST", "/rooms", map[string]any{
			"roomName":           roomName,
			"roomType":           roomType,
			"maxAmountOfPlayers": maxPlayers,
			"playerName":         playerName,
		})
	},
}

var getRoomCmd = &cobra.Command{
	Use:   "room [code]",
	Short: "Show a room and its players",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/rooms/"+args[0], nil)
	},
}

var joinCmd = &cobra.Command{
	Use:   "join [code]",
	Short: "Join a room by its code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("POST", "/rooms/"+args[0]+"/join", map[string]any{
			"playerName": playerName,
		})
	},
}

var leaveCmd = &cobra.Command{
	Use:   "leave [code]",
	Short: "Leave a room (requires --user)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("POST", "/rooms/"+args[0]+"/leave", nil)
	},
}

var startCmd = &cobra.Command{
	Use:   "start [code]",
	Short: "Start a full room's game or tournament (requires --user)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("POST", "/rooms/"+args[0]+"/start", nil)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [code]",
	Short: "Delete a room (requires --user, owner only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("DELETE", "/rooms/"+args[0], nil)
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches [code]",
	Short: "List the matches of a room's current stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("GET", "/rooms/"+args[0]+"/matches", nil)
	},
}

func performRequest(method, endpoint string, payload any) error {
	url := host + endpoint
	fmt.Printf("Making %s request to %s\n", method, url)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
