package dashboard

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/parking.report/internal/parking"
)

func TestBandFor(t *testing.T) {
	tests := []struct {
		percent float64
		want    Band
	}{
		{0, BandSuccess},
		{59.9, BandSuccess},
		{60, BandSuccess},
		{60.1, BandWarning},
		{75, BandWarning},
		{80, BandWarning},
		{80.01, BandDanger},
		{100, BandDanger},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.percent), "percent %v", tt.percent)
	}
}

func TestRenderStats(t *testing.T) {
	v := newFakeView(false)
	RenderStats(v, parking.OccupancyStatus{Disponibles: 9, Ocupados: 41, PorcentajeOcupacion: 82})

	assert.Equal(t, "9", v.stat(StatAvailable))
	assert.Equal(t, "41", v.stat(StatOccupied))
	assert.Equal(t, "82.0%", v.stat(StatPercent))
	require.NotNil(t, v.progress)
	assert.Equal(t, Progress{Percent: 82, Label: "82.0%", Band: BandDanger}, *v.progress)
}

func TestBuildRows_Empty(t *testing.T) {
	for _, in := range [][]parking.VehicleRecord{nil, {}} {
		rows := BuildRows(in)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].Placeholder)
		assert.Equal(t, EmptyTableMessage, rows[0].Message)
		assert.Empty(t, rows[0].Plate)
	}
}

func TestBuildRows_Records(t *testing.T) {
	blank := "   "
	luis := "Luis"
	records := []parking.VehicleRecord{
		{Placa: "ABC123", Tipo: "Auto", Propietario: &luis, Espacio: "3", HoraEntrada: "07:30:00",
			TiempoHoras: 2, TiempoMinutos: 5, TarifaActual: 7500},
		{Placa: "MOT-1", Tipo: "Moto", Propietario: &blank, Espacio: "12", HoraEntrada: "10:00:00",
			TiempoMinutos: 40, TieneAbono: true, TarifaActual: 13500},
		{Placa: "CAM99", Tipo: "Camioneta", Espacio: "1", HoraEntrada: "11:11:11"},
	}

	rows := BuildRows(records)
	require.Len(t, rows, 3)

	// order preserved
	plates := []string{rows[0].Plate, rows[1].Plate, rows[2].Plate}
	if diff := cmp.Diff([]string{"ABC123", "MOT-1", "CAM99"}, plates); diff != "" {
		t.Errorf("row order (-want +got):\n%s", diff)
	}

	assert.Equal(t, "Luis", rows[0].Owner)
	assert.Equal(t, UnknownOwner, rows[1].Owner, "blank owner falls back")
	assert.Equal(t, UnknownOwner, rows[2].Owner, "null owner falls back")

	assert.Equal(t, "2h 5m", rows[0].Duration)
	assert.Equal(t, "0h 40m", rows[1].Duration)

	assert.Equal(t, PlanNo, rows[0].PlanLabel)
	assert.False(t, rows[0].Discounted)
	assert.NotContains(t, rows[0].Fee, DiscountMarker)

	assert.Equal(t, PlanYes, rows[1].PlanLabel)
	assert.True(t, rows[1].HasPlan)
	assert.True(t, strings.HasSuffix(rows[1].Fee, DiscountMarker))
	assert.Contains(t, rows[1].Fee, "13.500")

	for _, r := range rows {
		assert.False(t, r.Placeholder)
	}
}

func TestRenderTable_ReplacesAll(t *testing.T) {
	v := newFakeView(true)
	RenderTable(v, []parking.VehicleRecord{{Placa: "AAA111"}, {Placa: "BBB222"}})
	require.Len(t, v.rows, 2)

	RenderTable(v, nil)
	require.Len(t, v.rows, 1)
	assert.True(t, v.rows[0].Placeholder)
	assert.Equal(t, 2, v.replaceCalls)
}

func TestFanout(t *testing.T) {
	a, b := newFakeView(false), newFakeView(true)
	f := Fanout{a, b}

	assert.True(t, f.HasTable())
	assert.False(t, Fanout{a}.HasTable())

	RenderStats(f, parking.OccupancyStatus{Disponibles: 1, Ocupados: 2, PorcentajeOcupacion: 4})
	assert.Equal(t, "1", a.stat(StatAvailable))
	assert.Equal(t, "1", b.stat(StatAvailable))

	RenderTable(f, nil)
	assert.Len(t, a.rows, 1)
	assert.Len(t, b.rows, 1)

	f.Notify(LevelError, "boom")
	assert.Equal(t, []string{"error: boom"}, a.notes())
	assert.Equal(t, []string{"error: boom"}, b.notes())

	f.SetSubscriptions(parking.SubscriptionStats{AbonosVigentes: 2})
	require.NotNil(t, a.plans)
	assert.Equal(t, 2, b.plans.AbonosVigentes)
}
