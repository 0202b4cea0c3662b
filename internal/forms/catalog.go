package forms

// Form actions served by the parking backend.
const (
	EntryAction        = "/ingresar"
	ExitAction         = "/egresar"
	LookupAction       = "/consultar"
	SubscriptionAction = "/abonos/nuevo"
)

// EntryForm is the vehicle check-in form.
func EntryForm() *Form {
	return New(EntryAction,
		Field{Name: PlateField, Label: "Placa", Required: true},
		Field{Name: "tipo_vehiculo", Label: "Tipo de vehículo", Required: true},
		Field{Name: "propietario", Label: "Propietario"},
	)
}

// ExitForm is the vehicle check-out form.
func ExitForm() *Form {
	return New(ExitAction, Field{Name: PlateField, Label: "Placa", Required: true})
}

// LookupForm queries a parked vehicle.
func LookupForm() *Form {
	return New(LookupAction, Field{Name: PlateField, Label: "Placa", Required: true})
}

// SubscriptionForm registers a monthly plan.
func SubscriptionForm() *Form {
	return New(SubscriptionAction,
		Field{Name: PlateField, Label: "Placa", Required: true},
		Field{Name: "propietario", Label: "Propietario", Required: true},
		Field{Name: "tipo_vehiculo", Label: "Tipo de vehículo", Required: true},
		Field{Name: "telefono", Label: "Teléfono"},
		Field{Name: "email", Label: "Email"},
	)
}

// ByName returns a fresh form by its short name, or nil.
func ByName(name string) *Form {
	switch name {
	case "ingresar":
		return EntryForm()
	case "egresar":
		return ExitForm()
	case "consultar":
		return LookupForm()
	case "abono":
		return SubscriptionForm()
	}
	return nil
}
