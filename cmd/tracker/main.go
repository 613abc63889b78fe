// Command tracker prints the price history of one observation in the terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"offer-tracker/internal/api/models"
	"offer-tracker/internal/chart"
	"offer-tracker/internal/source"
	"offer-tracker/internal/utils"
)

type Config struct {
	ServerURL   string
	Observation string
	Range       string
	Averaging   bool
	RefreshRate time.Duration
	Timezone    string
	LogLevel    string
}

// envelope mirrors the server's {"status","data","error"} responses.
type envelope[T any] struct {
	Status bool   `json:"status"`
	Data   T      `json:"data"`
	Error  string `json:"error"`
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:           "tracker",
		Short:         "Terminal client for the offer tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			utils.DefaultLogger().SetLevel(utils.ParseLogLevel(cfg.LogLevel))
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", "http://localhost:3500", "Tracker server URL")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")

	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "Show the price chart of an observation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := chart.LookupRange(cfg.Range); !ok {
				return fmt.Errorf("invalid range: %s", cfg.Range)
			}
			if utils.IsEmptyOrWhitespace(cfg.Observation) {
				return fmt.Errorf("--observation is required")
			}
			return runChart(cmd.Context(), cfg)
		},
	}
	chartCmd.Flags().StringVarP(&cfg.Observation, "observation", "o", "", "Observation key (category id)")
	chartCmd.Flags().StringVarP(&cfg.Range, "range", "r", string(chart.DefaultRange().Key), "Time step: 1m, 1h, 4h, 1d or auto")
	chartCmd.Flags().BoolVarP(&cfg.Averaging, "averaging", "a", false, "Average samples per time step")
	chartCmd.Flags().DurationVar(&cfg.RefreshRate, "refresh", time.Minute, "Refresh rate, 0 prints once")
	chartCmd.Flags().StringVar(&cfg.Timezone, "tz", "Local", "Timezone for tick labels")

	rangesCmd := &cobra.Command{
		Use:   "ranges",
		Short: "List the available time steps",
		Run: func(cmd *cobra.Command, _ []string) {
			printRanges(cmd.OutOrStdout())
		},
	}

	observationsCmd := &cobra.Command{
		Use:   "observations",
		Short: "List the observations known to the server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			observations, err := fetchObservations(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			printObservations(cmd.OutOrStdout(), observations)
			return nil
		},
	}

	rootCmd.AddCommand(chartCmd, rangesCmd, observationsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func runChart(ctx context.Context, cfg Config) error {
	loc := utils.ResolveTimezone(cfg.Timezone)
	label := cfg.Observation
	if observations, err := fetchObservations(ctx, cfg); err == nil {
		if obs, ok := source.FindObservation(observations, cfg.Observation); ok {
			label = obs.Label
		}
	}

	draw := func() {
		view, err := fetchHistory(ctx, cfg)
		if err != nil {
			printError(err)
			return
		}
		clearScreen()
		renderChart(os.Stdout, view, label, loc)
		fmt.Printf("\nControls: Ctrl+C to exit | Refresh: %v | Server: %s\n", cfg.RefreshRate, cfg.ServerURL)
	}

	draw()
	if cfg.RefreshRate <= 0 {
		return nil
	}

	ticker := time.NewTicker(cfg.RefreshRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		case <-ticker.C:
			draw()
		}
	}
}

func apiURL(server, path string, query url.Values) string {
	u := strings.TrimRight(server, "/") + "/api/v1/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func getJSON[T any](ctx context.Context, target string) (T, error) {
	var env envelope[T]
	body, err := utils.FetchWithLimits(ctx, utils.GetHTTPClient(), http.MethodGet, target, nil)
	if err != nil {
		return env.Data, err
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env.Data, fmt.Errorf("%w: %v", utils.ErrDataUnmarshalFailed, err)
	}
	if !env.Status {
		return env.Data, fmt.Errorf("server error: %s", env.Error)
	}
	return env.Data, nil
}

func fetchHistory(ctx context.Context, cfg Config) (chart.View, error) {
	q := url.Values{}
	q.Set("observation", cfg.Observation)
	q.Set("range", cfg.Range)
	q.Set("averaging", strconv.FormatBool(cfg.Averaging))
	return getJSON[chart.View](ctx, apiURL(cfg.ServerURL, "history", q))
}

func fetchObservations(ctx context.Context, cfg Config) ([]models.Observation, error) {
	return getJSON[[]models.Observation](ctx, apiURL(cfg.ServerURL, "observations", nil))
}
