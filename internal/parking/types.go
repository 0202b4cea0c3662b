package parking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// OccupancyStatus is the /api/estado payload.
type OccupancyStatus struct {
	Disponibles         int     `json:"disponibles"`
	Ocupados            int     `json:"ocupados"`
	PorcentajeOcupacion float64 `json:"porcentaje_ocupacion"`
	VehiculosCount      int     `json:"vehiculos_count,omitempty"`
}

// Validate checks the ranges the renderer relies on.
func (s OccupancyStatus) Validate() error {
	if s.Disponibles < 0 {
		return fmt.Errorf("disponibles must be non-negative, got %d", s.Disponibles)
	}
	if s.Ocupados < 0 {
		return fmt.Errorf("ocupados must be non-negative, got %d", s.Ocupados)
	}
	if s.PorcentajeOcupacion < 0 || s.PorcentajeOcupacion > 100 {
		return fmt.Errorf("porcentaje_ocupacion must be between 0 and 100, got %f", s.PorcentajeOcupacion)
	}
	return nil
}

// VehicleRecord is one element of the /api/vehiculos payload.
type VehicleRecord struct {
	Placa         string  `json:"placa"`
	Tipo          string  `json:"tipo"`
	Propietario   *string `json:"propietario"`
	Espacio       Space   `json:"espacio"`
	HoraEntrada   string  `json:"hora_entrada"`
	TiempoHoras   int     `json:"tiempo_horas"`
	TiempoMinutos int     `json:"tiempo_minutos"`
	TieneAbono    bool    `json:"tiene_abono"`
	TarifaActual  float64 `json:"tarifa_actual"`
}

// Owner returns the owner name, or "" when the backend sent null.
func (v VehicleRecord) Owner() string {
	if v.Propietario == nil {
		return ""
	}
	return *v.Propietario
}

// Space is an assigned parking space. The backend emits integers but the
// page contract treats it as text, so both JSON forms decode.
type Space string

// UnmarshalJSON accepts a JSON string, number or null.
func (s *Space) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Space(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("espacio: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*s = Space(strconv.FormatInt(i, 10))
		return nil
	}
	*s = Space(n.String())
	return nil
}

// SubscriptionStats is the /api/abonos payload (monthly plans).
type SubscriptionStats struct {
	TotalAbonos       int     `json:"total_abonos"`
	AbonosVigentes    int     `json:"abonos_vigentes"`
	AbonosVencidos    int     `json:"abonos_vencidos"`
	IngresosMensuales float64 `json:"ingresos_mensuales"`
	CostoAbono        float64 `json:"costo_abono"`
}
