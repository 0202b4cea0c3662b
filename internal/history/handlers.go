package history

import (
	"bytes"
	"fmt"
	"image/color"
	"net/http"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/parking.report/internal/httputil"
	"github.com/banshee-data/parking.report/internal/monitoring"
	"github.com/banshee-data/parking.report/internal/timeutil"
)

// DefaultWindow is the look-back used when a request gives none.
const DefaultWindow = 24 * time.Hour

const maxSamples = 5000

// Handler serves the recorded history.
type Handler struct {
	store *Store
	clock timeutil.Clock
}

// NewHandler serves samples from store. A nil clock uses the real clock.
func NewHandler(store *Store, clock timeutil.Clock) *Handler {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Handler{store: store, clock: clock}
}

// AttachRoutes mounts /history, /history/chart and /history/plot.png.
func (h *Handler) AttachRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/history", h.handleJSON)
	mux.HandleFunc("/history/chart", h.handleChart)
	mux.HandleFunc("/history/plot.png", h.handlePlot)
}

// Response is the /history payload.
type Response struct {
	Since   time.Time `json:"since"`
	Until   time.Time `json:"until"`
	Summary Summary   `json:"summary"`
	Samples []Sample  `json:"samples"`
}

// load reads the window and limit query parameters and fetches samples.
// It writes the error response itself and returns ok=false on failure.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (resp Response, ok bool) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return resp, false
	}

	window := DefaultWindow
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			httputil.BadRequest(w, fmt.Sprintf("invalid window %q", v))
			return resp, false
		}
		window = d
	}
	limit := maxSamples
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxSamples {
			httputil.BadRequest(w, fmt.Sprintf("limit must be between 1 and %d", maxSamples))
			return resp, false
		}
		limit = n
	}

	until := h.clock.Now()
	since := until.Add(-window)
	samples, err := h.store.Samples(r.Context(), since, until.Add(time.Millisecond), limit)
	if err != nil {
		monitoring.Logf("history: %v", err)
		httputil.WriteJSONError(w, http.StatusInternalServerError, "failed to read history")
		return resp, false
	}
	if samples == nil {
		samples = []Sample{}
	}
	return Response{Since: since.UTC(), Until: until.UTC(), Summary: Summarize(samples), Samples: samples}, true
}

func (h *Handler) handleJSON(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.load(w, r)
	if !ok {
		return
	}
	httputil.WriteJSONOK(w, resp)
}

// handleChart renders an interactive occupancy line chart.
func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.load(w, r)
	if !ok {
		return
	}

	xs := make([]string, 0, len(resp.Samples))
	pct := make([]opts.LineData, 0, len(resp.Samples))
	occ := make([]opts.LineData, 0, len(resp.Samples))
	for _, s := range resp.Samples {
		xs = append(xs, s.TakenAt.Local().Format("02/01 15:04"))
		pct = append(pct, opts.LineData{Value: s.Percent})
		occ = append(occ, opts.LineData{Value: s.Ocupados})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Ocupación del estacionamiento", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Ocupación del estacionamiento",
			Subtitle: fmt.Sprintf("muestras=%d promedio=%.1f%% máximo=%.1f%%", resp.Summary.Count, resp.Summary.MeanPercent, resp.Summary.MaxPercent),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%", Min: 0, Max: 100}),
	)
	line.SetXAxis(xs).
		AddSeries("porcentaje", pct).
		AddSeries("ocupados", occ)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		monitoring.Logf("history: render chart: %v", err)
		httputil.WriteJSONError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handlePlot renders a static PNG of the occupancy percentage.
func (h *Handler) handlePlot(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.load(w, r)
	if !ok {
		return
	}

	p := plot.New()
	p.Title.Text = "Ocupación (%)"
	p.X.Label.Text = "Hora"
	p.X.Tick.Marker = plot.TimeTicks{Format: "02/01 15:04"}
	p.Y.Min, p.Y.Max = 0, 100
	p.Add(plotter.NewGrid())

	if len(resp.Samples) > 0 {
		pts := make(plotter.XYs, len(resp.Samples))
		for i, s := range resp.Samples {
			pts[i].X = float64(s.TakenAt.Unix())
			pts[i].Y = s.Percent
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			monitoring.Logf("history: build plot line: %v", err)
			httputil.WriteJSONError(w, http.StatusInternalServerError, "failed to render plot")
			return
		}
		l.Width = vg.Points(1.5)
		l.Color = color.RGBA{R: 13, G: 110, B: 253, A: 255}
		p.Add(l)
	} else {
		p.X.Min = float64(resp.Since.Unix())
		p.X.Max = float64(resp.Until.Unix())
	}

	wt, err := p.WriterTo(10*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		monitoring.Logf("history: encode plot: %v", err)
		httputil.WriteJSONError(w, http.StatusInternalServerError, "failed to render plot")
		return
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		monitoring.Logf("history: encode plot: %v", err)
		httputil.WriteJSONError(w, http.StatusInternalServerError, "failed to render plot")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}
