package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// StatusResponse matches the body of GET /status
type StatusResponse struct {
	Server   string `json:"server"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	client := &http.Client{
		Timeout: 3 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://localhost:%s/status", port), nil)
	if err != nil {
		fmt.Printf("Failed to create request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("User-Agent", "healthcheck/1.0")

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Health check request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Printf("Failed to parse status response: %v\n", err)
		os.Exit(1)
	}

	if resp.StatusCode != http.StatusOK || status.Database != "ON" {
		fmt.Printf("Service is not healthy: status=%d server=%s database=%s %s\n",
			resp.StatusCode, status.Server, status.Database, status.Error)
		os.Exit(1)
	}

	fmt.Println("Health check passed")
}
