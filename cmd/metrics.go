package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	metricsServerURL string
	metricsReset     bool
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show validation metrics from a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		base := metricsServerURL
		if base == "" {
			base = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
		}

		client := &http.Client{Timeout: 10 * time.Second}

		method := http.MethodGet
		if metricsReset {
			method = http.MethodDelete
		}
		req, err := http.NewRequestWithContext(cmd.Context(), method, base+"/api/v1/metrics", nil)
		if err != nil {
			return eris.Wrap(err, "metrics: create request")
		}

		resp, err := client.Do(req)
		if err != nil {
			return eris.Wrap(err, "metrics: request failed")
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "metrics: read response")
		}
		if resp.StatusCode != http.StatusOK {
			return eris.Errorf("metrics: unexpected status %d: %s", resp.StatusCode, string(body))
		}

		fmt.Fprintln(os.Stdout, string(body))
		return nil
	},
}

func init() {
	metricsCmd.Flags().StringVar(&metricsServerURL, "server", "", "server base URL (default http://localhost:<port>)")
	metricsCmd.Flags().BoolVar(&metricsReset, "reset", false, "reset collected metrics instead of reading them")
	rootCmd.AddCommand(metricsCmd)
}
