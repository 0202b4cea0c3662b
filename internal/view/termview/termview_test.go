package termview

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/parking.report/internal/dashboard"
	"github.com/banshee-data/parking.report/internal/parking"
	"github.com/banshee-data/parking.report/internal/timeutil"
)

var (
	_ dashboard.View             = (*View)(nil)
	_ dashboard.Notifier         = (*View)(nil)
	_ dashboard.SubscriptionView = (*View)(nil)
)

func newTestView() (*View, *bytes.Buffer) {
	var buf bytes.Buffer
	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	return New(&buf, clock), &buf
}

func TestView_RenderStats(t *testing.T) {
	v, buf := newTestView()
	dashboard.RenderStats(v, parking.OccupancyStatus{Disponibles: 8, Ocupados: 42, PorcentajeOcupacion: 84})

	out := buf.String()
	assert.Contains(t, out, "Disponibles")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "84.0%")
	assert.Contains(t, out, strings.Repeat("░", barWidth-25))
	assert.Contains(t, out, "09:30:00")
}

func TestView_RenderBeforeData(t *testing.T) {
	v, _ := newTestView()
	out := v.Render()
	assert.Contains(t, out, "-")
	assert.Contains(t, out, "Placa")
	assert.NotContains(t, out, "█")
}

func TestView_Table(t *testing.T) {
	v, buf := newTestView()
	ana := "Ana"
	dashboard.RenderTable(v, []parking.VehicleRecord{
		{Placa: "ABC123", Tipo: "Auto", Propietario: &ana, Espacio: "4", HoraEntrada: "08:15:00",
			TiempoHoras: 1, TiempoMinutos: 20, TarifaActual: 5000},
		{Placa: "XYZ99", Tipo: "Moto", Espacio: "7", TieneAbono: true, TarifaActual: 1350},
	})

	out := buf.String()
	assert.Contains(t, out, "ABC123")
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, dashboard.UnknownOwner)
	assert.Contains(t, out, dashboard.DiscountMarker)
}

func TestView_EmptyTable(t *testing.T) {
	v, buf := newTestView()
	dashboard.RenderTable(v, nil)
	assert.Contains(t, buf.String(), dashboard.EmptyTableMessage)
}

func TestView_Notify(t *testing.T) {
	v, buf := newTestView()
	v.Notify(dashboard.LevelError, dashboard.RefreshErrorMessage)

	line := buf.String()
	assert.Contains(t, line, "ERROR")
	assert.Contains(t, line, dashboard.RefreshErrorMessage)
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Equal(t, 1, strings.Count(line, "\n"))
}

func TestView_Subscriptions(t *testing.T) {
	v, _ := newTestView()
	v.SetSubscriptions(parking.SubscriptionStats{TotalAbonos: 3, AbonosVigentes: 2, IngresosMensuales: 616000})
	assert.Contains(t, v.Render(), "Abonos vigentes 2 de 3")
}

type staticSource struct{}

func (staticSource) Status(context.Context) (parking.OccupancyStatus, error) {
	return parking.OccupancyStatus{Disponibles: 40, Ocupados: 10, PorcentajeOcupacion: 20}, nil
}

func (staticSource) Vehicles(context.Context) ([]parking.VehicleRecord, error) {
	return nil, nil
}

func TestView_DrivenByDashboard(t *testing.T) {
	v, buf := newTestView()
	d := dashboard.New(staticSource{}, v, v, dashboard.Options{Clock: timeutil.NewMockClock(time.Now())})
	defer d.Close()

	d.Refresh(context.Background())
	out := buf.String()
	require.Contains(t, out, "20.0%")
	assert.Contains(t, out, dashboard.EmptyTableMessage)
}
