// Command dashboard polls the parking backend and serves the live dashboard
// to browsers, a terminal, or both.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/banshee-data/parking.report/internal/config"
	"github.com/banshee-data/parking.report/internal/dashboard"
	"github.com/banshee-data/parking.report/internal/fsutil"
	"github.com/banshee-data/parking.report/internal/history"
	"github.com/banshee-data/parking.report/internal/httputil"
	"github.com/banshee-data/parking.report/internal/parking"
	"github.com/banshee-data/parking.report/internal/version"
	"github.com/banshee-data/parking.report/internal/view/liveview"
	"github.com/banshee-data/parking.report/internal/view/termview"
)

var (
	configPath  = flag.String("config", config.DefaultConfigPath, "Path to the dashboard JSON config (empty for built-in defaults)")
	listen      = flag.String("listen", "", "HTTP listen address (overrides config)")
	apiBase     = flag.String("api", "", "Parking backend base URL (overrides config and "+envAPIBase+")")
	viewMode    = flag.String("view", "web", "Where to render: web, term or both")
	historyDB   = flag.String("history-db", "", "SQLite file for occupancy history (overrides config)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

const envAPIBase = "PARKING_API_BASE"

const shutdownTimeout = 5 * time.Second

// overrides are the command-line and environment values layered on top of
// the config file, in increasing priority: env, then flags.
type overrides struct {
	envAPI    string
	api       string
	listen    string
	historyDB string
}

// loadConfig reads path from fsys and applies o. A missing default config
// file falls back to built-in defaults; any other load error is returned.
func loadConfig(fsys fsutil.FileSystem, path string, o overrides) (*config.DashboardConfig, error) {
	cfg := config.EmptyDashboardConfig()
	if path != "" {
		loaded, err := config.LoadDashboardConfig(fsys, path)
		switch {
		case err == nil:
			cfg = loaded
		case path == config.DefaultConfigPath && !fsys.Exists(path):
			log.Printf("no config at %s, using built-in defaults", path)
		default:
			return nil, err
		}
	}

	if o.envAPI != "" {
		cfg.WithAPIBaseURL(o.envAPI)
	}
	if o.api != "" {
		cfg.WithAPIBaseURL(o.api)
	}
	if o.listen != "" {
		cfg.WithListen(o.listen)
	}
	if o.historyDB != "" {
		cfg.WithHistoryDB(o.historyDB)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// parseViewMode maps the -view flag to the views to build.
func parseViewMode(mode string) (web, term bool, err error) {
	switch mode {
	case "web":
		return true, false, nil
	case "term":
		return false, true, nil
	case "both":
		return true, true, nil
	}
	return false, false, fmt.Errorf("unknown view %q (want web, term or both)", mode)
}

// buildView combines the enabled views. A single view is used directly so
// that its optional interfaces (visibility, subscriptions) stay visible to
// the dashboard.
func buildView(live *liveview.Server, term *termview.View) (dashboard.View, dashboard.Notifier) {
	var views dashboard.Fanout
	if live != nil {
		views = append(views, live)
	}
	if term != nil {
		views = append(views, term)
	}
	if len(views) == 1 {
		n, _ := views[0].(dashboard.Notifier)
		return views[0], n
	}
	return views, views
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("dashboard " + version.String())
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("parking dashboard %s", version.String())
	if err := run(ctx, fsutil.OSFileSystem{}, os.Stdout); err != nil {
		log.Fatalf("dashboard: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}

// ensureHistoryDir creates the directory holding the history database.
func ensureHistoryDir(fsys fsutil.FileSystem, path string) error {
	if path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || fsys.Exists(dir) {
		return nil
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	return nil
}

func run(ctx context.Context, fsys fsutil.FileSystem, out io.Writer) error {
	cfg, err := loadConfig(fsys, *configPath, overrides{
		envAPI:    os.Getenv(envAPIBase),
		api:       *apiBase,
		listen:    *listen,
		historyDB: *historyDB,
	})
	if err != nil {
		return err
	}
	web, term, err := parseViewMode(*viewMode)
	if err != nil {
		return err
	}

	client, err := parking.NewClient(cfg.GetAPIBaseURL(), nil, cfg.GetRequestTimeout())
	if err != nil {
		return err
	}
	log.Printf("polling %s every %s", client.BaseURL(), cfg.GetUpdateInterval())

	var live *liveview.Server
	if web {
		live = liveview.New(liveview.Options{
			NotificationTTL:   cfg.GetNotificationTTL(),
			SimulatorDebounce: cfg.GetSimulatorDebounce(),
			Rates:             cfg.GetRates(),
		})
	}
	var tv *termview.View
	if term {
		tv = termview.New(out, nil)
	}
	view, notifier := buildView(live, tv)

	opts := dashboard.Options{
		Interval:     cfg.GetUpdateInterval(),
		DiscardStale: cfg.GetDiscardStaleResponses(),
	}

	var store *history.Store
	var retainer *history.Retainer
	if path := cfg.GetHistoryDB(); path != "" {
		if err := ensureHistoryDir(fsys, path); err != nil {
			return err
		}
		store, err = history.Open(path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
		opts.Recorder = store

		retainer = history.NewRetainer(store, nil, cfg.GetHistoryRetention(), history.DefaultPruneEvery)
		retainer.Start()
		defer retainer.Stop()
		log.Printf("recording occupancy history to %s", store.Path())
	}

	dash := dashboard.New(client, view, notifier, opts)
	defer dash.Close()
	if live != nil {
		live.Bind(dash)
		defer live.Close()
	}
	dash.Start(ctx)
	dash.Trigger()

	if live == nil && store == nil {
		<-ctx.Done()
		return nil
	}

	mux := http.NewServeMux()
	if live != nil {
		live.AttachRoutes(mux)
	}
	if store != nil {
		history.NewHandler(store, nil).AttachRoutes(mux)
		if err := store.AttachAdminRoutes(mux); err != nil {
			log.Printf("history admin routes disabled: %v", err)
		}
	}
	return serve(ctx, &http.Server{
		Addr:    cfg.GetListen(),
		Handler: httputil.LoggingMiddleware(mux),
	})
}

// serve runs server until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	return nil
}
