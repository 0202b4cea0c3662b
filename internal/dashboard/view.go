package dashboard

import "github.com/banshee-data/parking.report/internal/parking"

// Stat identifiers shared with the page templates.
const (
	StatAvailable = "espacios-disponibles"
	StatOccupied  = "espacios-ocupados"
	StatPercent   = "porcentaje-ocupacion"
)

// TableColumns is the number of columns in the vehicle table.
const TableColumns = 8

// Band is the colour class of the occupancy progress bar.
type Band string

const (
	BandSuccess Band = "success"
	BandWarning Band = "warning"
	BandDanger  Band = "danger"
)

// Progress is the occupancy bar state.
type Progress struct {
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
	Band    Band    `json:"band"`
}

// Row is one rendered line of the vehicle table. A placeholder row carries
// only Message and spans all TableColumns.
type Row struct {
	Placeholder bool   `json:"placeholder,omitempty"`
	Message     string `json:"message,omitempty"`

	Plate      string `json:"plate,omitempty"`
	Type       string `json:"type,omitempty"`
	Owner      string `json:"owner,omitempty"`
	Space      string `json:"space,omitempty"`
	EntryTime  string `json:"entry_time,omitempty"`
	Duration   string `json:"duration,omitempty"`
	HasPlan    bool   `json:"has_plan,omitempty"`
	PlanLabel  string `json:"plan_label,omitempty"`
	Fee        string `json:"fee,omitempty"`
	Discounted bool   `json:"discounted,omitempty"`
}

// View is the rendering surface the dashboard reconciles into. Every method
// is best-effort: a view without a given element ignores the call.
type View interface {
	SetStat(id, value string)
	SetProgress(p Progress)
	ReplaceRows(rows []Row)
	// HasTable reports whether the view shows the vehicle table, which
	// decides whether a refresh fetches the vehicle list at all.
	HasTable() bool
}

// Level classifies a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier shows transient, non-blocking messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// VisibilitySource reports when somebody starts or stops watching a view.
type VisibilitySource interface {
	OnVisibilityChange(fn func(visible bool))
}

// Fanout renders into several views at once.
type Fanout []View

func (f Fanout) SetStat(id, value string) {
	for _, v := range f {
		v.SetStat(id, value)
	}
}

func (f Fanout) SetProgress(p Progress) {
	for _, v := range f {
		v.SetProgress(p)
	}
}

func (f Fanout) ReplaceRows(rows []Row) {
	for _, v := range f {
		v.ReplaceRows(rows)
	}
}

func (f Fanout) HasTable() bool {
	for _, v := range f {
		if v.HasTable() {
			return true
		}
	}
	return false
}

// Notify forwards to every member view that is also a Notifier.
func (f Fanout) Notify(level Level, message string) {
	for _, v := range f {
		if n, ok := v.(Notifier); ok {
			n.Notify(level, message)
		}
	}
}

// SetSubscriptions forwards to every member view that shows plan stats.
func (f Fanout) SetSubscriptions(s parking.SubscriptionStats) {
	for _, v := range f {
		if sv, ok := v.(SubscriptionView); ok {
			sv.SetSubscriptions(s)
		}
	}
}
