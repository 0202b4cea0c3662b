// Package termview renders the dashboard to a terminal. It has no notion of
// visibility, so a dashboard driving only this view polls for as long as it
// runs.
package termview

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/banshee-data/parking.report/internal/dashboard"
	"github.com/banshee-data/parking.report/internal/monitoring"
	"github.com/banshee-data/parking.report/internal/parking"
	"github.com/banshee-data/parking.report/internal/timeutil"
	"github.com/banshee-data/parking.report/internal/units"
)

const barWidth = 30

var tableHeaders = []string{"Placa", "Tipo", "Propietario", "Espacio", "Entrada", "Tiempo", "Abono", "Tarifa"}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			MarginRight(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	bandColors = map[dashboard.Band]lipgloss.Color{
		dashboard.BandSuccess: lipgloss.Color("#198754"),
		dashboard.BandWarning: lipgloss.Color("#ffc107"),
		dashboard.BandDanger:  lipgloss.Color("#dc3545"),
	}
	levelColors = map[dashboard.Level]lipgloss.Color{
		dashboard.LevelInfo:    lipgloss.Color("#0dcaf0"),
		dashboard.LevelSuccess: lipgloss.Color("#198754"),
		dashboard.LevelWarning: lipgloss.Color("#ffc107"),
		dashboard.LevelError:   lipgloss.Color("#dc3545"),
	}
)

// View keeps the last rendered model and redraws the whole frame whenever
// the progress bar or the table changes. Notifications are written as
// single lines as they arrive.
type View struct {
	w     io.Writer
	clock timeutil.Clock

	mu       sync.Mutex
	stats    map[string]string
	progress *dashboard.Progress
	rows     []dashboard.Row
	plans    *parking.SubscriptionStats
}

// New returns a View writing to w. A nil clock uses the real clock.
func New(w io.Writer, clock timeutil.Clock) *View {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &View{w: w, clock: clock, stats: make(map[string]string)}
}

func (v *View) SetStat(id, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats[id] = value
}

// SetProgress is the last step of a stats render, so it flushes a frame.
func (v *View) SetProgress(p dashboard.Progress) {
	v.mu.Lock()
	v.progress = &p
	v.mu.Unlock()
	v.Flush()
}

func (v *View) ReplaceRows(rows []dashboard.Row) {
	v.mu.Lock()
	v.rows = rows
	v.mu.Unlock()
	v.Flush()
}

func (v *View) HasTable() bool { return true }

func (v *View) SetSubscriptions(s parking.SubscriptionStats) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.plans = &s
}

// Notify writes one timestamped, level-coloured line.
func (v *View) Notify(level dashboard.Level, message string) {
	style := lipgloss.NewStyle().Bold(true).Foreground(levelColors[level])
	line := fmt.Sprintf("%s %s %s\n",
		mutedStyle.Render(v.clock.Now().Format("15:04:05")),
		style.Render(strings.ToUpper(string(level))),
		message)
	v.write(line)
}

// Flush writes the current frame.
func (v *View) Flush() {
	v.write(v.Render() + "\n")
}

func (v *View) write(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, err := io.WriteString(v.w, s); err != nil {
		monitoring.Logf("termview: write failed: %v", err)
	}
}

// Render returns the current frame.
func (v *View) Render() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Estacionamiento · " + v.clock.Now().Format("2006-01-02 15:04:05")))
	b.WriteString("\n")

	cards := []string{
		v.card("Disponibles", dashboard.StatAvailable),
		v.card("Ocupados", dashboard.StatOccupied),
		v.card("Ocupación", dashboard.StatPercent),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n")

	if v.progress != nil {
		b.WriteString(renderBar(*v.progress))
		b.WriteString("\n")
	}
	if v.plans != nil {
		b.WriteString(labelStyle.Render(fmt.Sprintf("Abonos vigentes %d de %d · ingresos %s",
			v.plans.AbonosVigentes, v.plans.TotalAbonos, units.FormatCurrency(v.plans.IngresosMensuales))))
		b.WriteString("\n")
	}

	b.WriteString(renderTable(v.rows))
	return b.String()
}

func (v *View) card(label, id string) string {
	value, ok := v.stats[id]
	if !ok {
		value = "-"
	}
	return cardStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

func renderBar(p dashboard.Progress) string {
	pct := math.Max(0, math.Min(100, p.Percent))
	filled := int(math.Round(pct / 100 * barWidth))
	bar := lipgloss.NewStyle().Foreground(bandColors[p.Band]).Render(strings.Repeat("█", filled)) +
		strings.Repeat("░", barWidth-filled)
	return bar + " " + p.Label
}

func renderTable(rows []dashboard.Row) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tableHeaders...)

	if len(rows) == 1 && rows[0].Placeholder {
		return t.String() + "\n" + mutedStyle.Render(rows[0].Message)
	}
	for _, r := range rows {
		t.Row(r.Plate, r.Type, r.Owner, r.Space, r.EntryTime, r.Duration, r.PlanLabel, r.Fee)
	}
	return t.String()
}
