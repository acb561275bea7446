package entity

type FormField string

const (
	FieldAddress FormField = "address"
	FieldCity    FormField = "city"
	FieldZip     FormField = "zip"
)

// AddressFields is the fixed order in which the assistant asks for address data.
var AddressFields = []FormField{FieldAddress, FieldCity, FieldZip}

// Target returns the named screen target the field is filled through.
func (f FormField) Target() string {
	if f == FieldAddress {
		return "address_line_1"
	}
	return string(f)
}

// FormProgress records which address fields were auto-filled in a session.
type FormProgress struct {
	filled map[FormField]bool
}

func NewFormProgress() *FormProgress {
	return &FormProgress{filled: make(map[FormField]bool)}
}

func (p *FormProgress) MarkFilled(fields ...FormField) {
	for _, f := range fields {
		p.filled[f] = true
	}
}

func (p *FormProgress) Filled(f FormField) bool {
	return p.filled[f]
}

// NextMissing returns the first address field not yet filled.
func (p *FormProgress) NextMissing() (FormField, bool) {
	for _, f := range AddressFields {
		if !p.filled[f] {
			return f, true
		}
	}
	return "", false
}

// ScriptedAction is a step the client replays on its own page, such as
// navigating to the benefits portal.
type ScriptedAction struct {
	Type     string `json:"type"`
	Value    string `json:"value,omitempty"`
	Selector string `json:"selector,omitempty"`
	Ms       int    `json:"ms,omitempty"`
}
