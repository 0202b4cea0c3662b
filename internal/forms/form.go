package forms

import (
	"strings"
)

// Inline and notification messages.
const (
	MsgRequired    = "Este campo es obligatorio"
	MsgPlateFormat = "Formato de placa inválido"
	MsgEntryPlate  = "Formato de placa inválido. Use entre 3-8 caracteres alfanuméricos."
)

// Field is one form input. Error holds the inline message attached by the
// last Validate, or "" when there is none.
type Field struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Value    string `json:"value"`
	Required bool   `json:"required,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Form is an ordered set of fields posted to Action.
type Form struct {
	Action string   `json:"action"`
	Fields []*Field `json:"fields"`
}

// New builds a form from field templates. The templates are copied.
func New(action string, fields ...Field) *Form {
	f := &Form{Action: action, Fields: make([]*Field, 0, len(fields))}
	for i := range fields {
		fd := fields[i]
		f.Fields = append(f.Fields, &fd)
	}
	return f
}

// Field returns the named field, or nil.
func (f *Form) Field(name string) *Field {
	for _, fd := range f.Fields {
		if fd.Name == name {
			return fd
		}
	}
	return nil
}

// Input sets a field value as typed. Plate fields are uppercased. It reports
// false for an unknown field.
func (f *Form) Input(name, value string) bool {
	fd := f.Field(name)
	if fd == nil {
		return false
	}
	if name == PlateField {
		value = NormalizePlate(value)
	}
	fd.Value = value
	return true
}

// Validate clears every inline error and re-checks the required fields. A
// blank required field gets MsgRequired; a non-blank plate that fails the
// format gets MsgPlateFormat. It reports whether the form may be submitted.
func (f *Form) Validate() bool {
	ok := true
	for _, fd := range f.Fields {
		fd.Error = ""
		if !fd.Required {
			continue
		}
		value := strings.TrimSpace(fd.Value)
		switch {
		case value == "":
			fd.Error = MsgRequired
			ok = false
		case fd.Name == PlateField && !ValidPlate(value):
			fd.Error = MsgPlateFormat
			ok = false
		}
	}
	return ok
}

// Errors maps field names to their current inline error.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string)
	for _, fd := range f.Fields {
		if fd.Error != "" {
			out[fd.Name] = fd.Error
		}
	}
	return out
}

// IsEntry reports whether the form posts to the vehicle entry action.
func (f *Form) IsEntry() bool {
	return strings.Contains(f.Action, "ingresar")
}

// CheckEntry is the extra gate on the entry form: a malformed plate blocks
// submission with a notification message. Other forms always pass.
func CheckEntry(f *Form) (ok bool, notice string) {
	if !f.IsEntry() {
		return true, ""
	}
	fd := f.Field(PlateField)
	if fd == nil || !ValidPlate(fd.Value) {
		return false, MsgEntryPlate
	}
	return true, ""
}

// Result is the outcome of a submit attempt.
type Result struct {
	OK     bool              `json:"ok"`
	Notice string            `json:"notice,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Submit runs the entry gate and the required-field validation. Both always
// run so inline errors are refreshed even when the gate rejects.
func Submit(f *Form) Result {
	gateOK, notice := CheckEntry(f)
	valid := f.Validate()
	return Result{OK: gateOK && valid, Notice: notice, Errors: f.Errors()}
}
