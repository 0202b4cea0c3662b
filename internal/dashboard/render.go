package dashboard

import (
	"strings"

	"github.com/banshee-data/parking.report/internal/parking"
	"github.com/banshee-data/parking.report/internal/units"
)

// Table texts.
const (
	EmptyTableMessage = "No hay vehículos en el estacionamiento"
	UnknownOwner      = "No especificado"
	PlanYes           = "Sí"
	PlanNo            = "No"
	DiscountMarker    = "(-10%)"
)

// BandFor classifies an occupancy percentage: above 80 is danger, above 60
// is warning, anything else success.
func BandFor(percent float64) Band {
	switch {
	case percent > 80:
		return BandDanger
	case percent > 60:
		return BandWarning
	default:
		return BandSuccess
	}
}

// RenderStats writes the three counters and the progress bar.
func RenderStats(v View, s parking.OccupancyStatus) {
	v.SetStat(StatAvailable, units.FormatCount(s.Disponibles))
	v.SetStat(StatOccupied, units.FormatCount(s.Ocupados))
	v.SetStat(StatPercent, units.FormatPercent(s.PorcentajeOcupacion))

	v.SetProgress(Progress{
		Percent: s.PorcentajeOcupacion,
		Label:   units.FormatPercent(s.PorcentajeOcupacion),
		Band:    BandFor(s.PorcentajeOcupacion),
	})
}

// RenderTable replaces every table row with rows built from records.
func RenderTable(v View, records []parking.VehicleRecord) {
	v.ReplaceRows(BuildRows(records))
}

// BuildRows maps records to table rows in input order. An empty input yields
// the single placeholder row.
func BuildRows(records []parking.VehicleRecord) []Row {
	if len(records) == 0 {
		return []Row{{Placeholder: true, Message: EmptyTableMessage}}
	}

	rows := make([]Row, 0, len(records))
	for _, r := range records {
		owner := strings.TrimSpace(r.Owner())
		if owner == "" {
			owner = UnknownOwner
		}
		plan := PlanNo
		fee := units.FormatCurrency(r.TarifaActual)
		if r.TieneAbono {
			plan = PlanYes
			fee += " " + DiscountMarker
		}
		rows = append(rows, Row{
			Plate:      r.Placa,
			Type:       r.Tipo,
			Owner:      owner,
			Space:      string(r.Espacio),
			EntryTime:  r.HoraEntrada,
			Duration:   units.FormatStay(r.TiempoHoras, r.TiempoMinutos),
			HasPlan:    r.TieneAbono,
			PlanLabel:  plan,
			Fee:        fee,
			Discounted: r.TieneAbono,
		})
	}
	return rows
}
