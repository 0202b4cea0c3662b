package liveview

import (
	"github.com/banshee-data/parking.report/internal/dashboard"
	"github.com/banshee-data/parking.report/internal/forms"
	"github.com/banshee-data/parking.report/internal/parking"
	"github.com/banshee-data/parking.report/internal/tariff"
)

// Outbound event types.
const (
	EventSnapshot      = "snapshot"
	EventStat          = "stat"
	EventProgress      = "progress"
	EventRows          = "rows"
	EventNotification  = "notification"
	EventDismiss       = "dismiss"
	EventSimulator     = "simulator"
	EventSubscriptions = "subscriptions"
	EventPlate         = "plate"
	EventForm          = "form"
	EventError         = "error"
)

// Inbound event types.
const (
	InRefresh = "refresh"
	InInput   = "input"
	InChange  = "change"
	InPlate   = "plate"
	InSubmit  = "submit"
)

// Event is one message pushed to the page. Only the fields relevant to Type
// are set.
type Event struct {
	Type string `json:"type"`

	ID    string `json:"id,omitempty"`
	Value string `json:"value,omitempty"`
	// Pulse asks the page to animate the updated stat.
	Pulse bool `json:"pulse,omitempty"`

	Snapshot      *Snapshot                  `json:"snapshot,omitempty"`
	Progress      *dashboard.Progress        `json:"progress,omitempty"`
	Rows          []dashboard.Row            `json:"rows,omitempty"`
	Notification  *Notification              `json:"notification,omitempty"`
	Quote         *tariff.Quote              `json:"quote,omitempty"`
	Subscriptions *parking.SubscriptionStats `json:"subscriptions,omitempty"`
	Form          string                     `json:"form,omitempty"`
	Result        *forms.Result              `json:"result,omitempty"`
}

// Inbound is one message received from the page.
type Inbound struct {
	Type   string            `json:"type"`
	Field  string            `json:"field,omitempty"`
	Value  string            `json:"value,omitempty"`
	Form   string            `json:"form,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}
