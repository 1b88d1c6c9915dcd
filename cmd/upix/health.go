package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// healthResponse matches internal/http HealthResponse.
type healthResponse struct {
	Status         string `json:"status"`
	CatalogRecords int    `json:"catalog_records"`
	AIAvailable    bool   `json:"ai_available"`
}

func newHealthCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check a running upiexplaind server",
		Long: `Check the health status of an upiexplaind HTTP server.

Examples:
  upix health
  upix health --server http://localhost:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			url := strings.TrimRight(opts.serverURL, "/") + "/health"

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("failed to connect to %s: %w", url, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
				if readErr != nil {
					return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
				}
				return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
			}

			var health healthResponse
			if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}

			out := cmd.OutOrStdout()
			status := okStyle.Render("✓ " + strings.ToUpper(health.Status))
			if health.Status != "ok" {
				status = errorStyle.Render("✗ " + strings.ToUpper(health.Status))
			}
			fmt.Fprintf(out, "Server Status:   %s\n", status)
			fmt.Fprintf(out, "Server URL:      %s\n", opts.serverURL)
			fmt.Fprintf(out, "Catalog records: %d\n", health.CatalogRecords)
			fmt.Fprintf(out, "AI fallback:     %t\n", health.AIAvailable)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.serverURL, "server", "http://localhost:8080", "upiexplaind server URL")
	return cmd
}
