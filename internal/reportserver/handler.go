package reportserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sort"

	"enemeval/internal/report"
)

// NewHandler builds the HTTP handler for the dashboard, summary API and
// report files.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.ReportsDir == "" {
		return nil, errors.New("reportserver: reports dir is required")
	}
	info, err := os.Stat(cfg.ReportsDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("reportserver: reports path is not a directory")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", serveDashboard(cfg.ReportsDir))
	mux.HandleFunc("GET /api/summary", serveSummary(cfg.ReportsDir))
	mux.Handle("GET /files/", http.StripPrefix("/files/", http.FileServer(http.Dir(cfg.ReportsDir))))
	if cfg.DBPath != "" {
		mux.Handle("/data/db.duckdb", serveDatabase(cfg.DBPath))
	}
	return mux, nil
}

func serveDashboard(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		global, err := report.LoadGlobal(dir)
		if err != nil {
			http.Error(w, "no report found; run enemeval run or enemeval report first", http.StatusNotFound)
			return
		}
		files, err := listFiles(dir)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := report.DashboardPage(global, files).Render(r.Context(), w); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func serveSummary(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		global, err := report.LoadGlobal(dir)
		if err != nil {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(global)
	}
}

// serveDatabase serves the DuckDB file from disk.
func serveDatabase(dbPath string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		http.ServeFile(w, r, dbPath)
	})
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
