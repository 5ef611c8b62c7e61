package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	backendURL string

	rootCmd = &cobra.Command{
		Use:   "tetrisctl",
		Short: "Inspect and drive the tetris analyzer backend",
		Long: `tetrisctl talks to a running analyzer backend over its HTTP API.

Feed it board observations, read back ranked placement suggestions,
coaching hints and evaluator metrics, and tune the configuration.`,
	}

	httpClient = &http.Client{Timeout: 10 * time.Second}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultURL := os.Getenv("BACKEND_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", defaultURL, "analyzer backend base URL")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(hintsCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(resetCmd)
}

func getJSON(path string, out any) error {
	resp, err := httpClient.Get(backendURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("GET %s -> %d: %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func postJSON(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := httpClient.Post(backendURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("POST %s -> %d: %s", path, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
