// File: internal/fields/spec.go
package fields

import (
	"github.com/xkilldash9x/formforge/internal/geometry"
	"github.com/xkilldash9x/formforge/internal/style"
)

// Kind discriminates the field variants.
type Kind string

const (
	KindText      Kind = "text"
	KindCheckbox  Kind = "checkbox"
	KindRadio     Kind = "radio"
	KindDropdown  Kind = "dropdown"
	KindButton    Kind = "button"
	KindSignature Kind = "signature"
)

// Kinds lists every supported kind in declaration order.
var Kinds = []Kind{KindText, KindCheckbox, KindRadio, KindDropdown, KindButton, KindSignature}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

// Spec describes one interactive field. Exactly one variant payload may be set
// and it must match Kind; checkbox, button and signature payloads are optional.
type Spec struct {
	Name     string         `yaml:"name" json:"name"`
	Kind     Kind           `yaml:"kind" json:"kind"`
	Label    string         `yaml:"label,omitempty" json:"label,omitempty"`
	Selector string         `yaml:"selector,omitempty" json:"selector,omitempty"`
	Position *geometry.Rect `yaml:"position,omitempty" json:"position,omitempty"`
	Page     *int           `yaml:"page,omitempty" json:"page,omitempty"`
	OffsetX  float64        `yaml:"offset_x,omitempty" json:"offsetX,omitempty"`
	OffsetY  float64        `yaml:"offset_y,omitempty" json:"offsetY,omitempty"`
	Width    float64        `yaml:"width,omitempty" json:"width,omitempty"`
	Height   float64        `yaml:"height,omitempty" json:"height,omitempty"`

	BorderColor     *style.RGB `yaml:"border_color,omitempty" json:"borderColor,omitempty"`
	BackgroundColor *style.RGB `yaml:"background_color,omitempty" json:"backgroundColor,omitempty"`
	TextColor       *style.RGB `yaml:"text_color,omitempty" json:"textColor,omitempty"`
	FontSize        float64    `yaml:"font_size,omitempty" json:"fontSize,omitempty"`
	BorderWidth     *float64   `yaml:"border_width,omitempty" json:"borderWidth,omitempty"`
	Classes         string     `yaml:"classes,omitempty" json:"classes,omitempty"`

	Required bool `yaml:"required,omitempty" json:"required,omitempty"`
	ReadOnly bool `yaml:"read_only,omitempty" json:"readOnly,omitempty"`

	Text      *TextOptions      `yaml:"text,omitempty" json:"text,omitempty"`
	Checkbox  *CheckboxOptions  `yaml:"checkbox,omitempty" json:"checkbox,omitempty"`
	Radio     *RadioOptions     `yaml:"radio,omitempty" json:"radio,omitempty"`
	Dropdown  *DropdownOptions  `yaml:"dropdown,omitempty" json:"dropdown,omitempty"`
	Button    *ButtonOptions    `yaml:"button,omitempty" json:"button,omitempty"`
	Signature *SignatureOptions `yaml:"signature,omitempty" json:"signature,omitempty"`
}

type TextOptions struct {
	Multiline bool        `yaml:"multiline,omitempty" json:"multiline,omitempty"`
	MaxLength int         `yaml:"max_length,omitempty" json:"maxLength,omitempty"`
	Password  bool        `yaml:"password,omitempty" json:"password,omitempty"`
	Align     style.Align `yaml:"align,omitempty" json:"align,omitempty"`
	Default   string      `yaml:"default,omitempty" json:"default,omitempty"`
}

type CheckboxOptions struct {
	Default bool    `yaml:"default,omitempty" json:"default,omitempty"`
	Size    float64 `yaml:"size,omitempty" json:"size,omitempty"`
}

type RadioOption struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Caption is the label when set, otherwise the value.
func (o RadioOption) Caption() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

type RadioOptions struct {
	Options []RadioOption `yaml:"options" json:"options"`
	Spacing float64       `yaml:"spacing,omitempty" json:"spacing,omitempty"`
	Size    float64       `yaml:"size,omitempty" json:"size,omitempty"`
	Default string        `yaml:"default,omitempty" json:"default,omitempty"`
}

type DropdownOptions struct {
	Options  []string `yaml:"options" json:"options"`
	Editable bool     `yaml:"editable,omitempty" json:"editable,omitempty"`
	Default  string   `yaml:"default,omitempty" json:"default,omitempty"`
}

// ButtonAction is what a push button does when activated.
type ButtonAction string

const (
	ActionNone   ButtonAction = "none"
	ActionSubmit ButtonAction = "submit"
	ActionReset  ButtonAction = "reset"
	ActionPrint  ButtonAction = "print"
	ActionScript ButtonAction = "script"
)

type ButtonOptions struct {
	Label  string       `yaml:"label,omitempty" json:"label,omitempty"`
	Action ButtonAction `yaml:"action,omitempty" json:"action,omitempty"`
	Script string       `yaml:"script,omitempty" json:"script,omitempty"`
	URL    string       `yaml:"url,omitempty" json:"url,omitempty"`
}

// SignatureOptions carries no attributes; it exists so YAML documents can name the variant.
type SignatureOptions struct{}

// HasPlacement reports whether the spec carries its own location.
func (s *Spec) HasPlacement() bool {
	return s.Selector != "" || s.Position != nil
}

// Normalize fills in the optional payloads so composition can match on Kind alone.
func (s *Spec) Normalize() {
	switch s.Kind {
	case KindText:
		if s.Text == nil {
			s.Text = &TextOptions{}
		}
	case KindCheckbox:
		if s.Checkbox == nil {
			s.Checkbox = &CheckboxOptions{}
		}
	case KindButton:
		if s.Button == nil {
			s.Button = &ButtonOptions{}
		}
		if s.Button.Action == "" {
			s.Button.Action = ActionNone
		}
	case KindSignature:
		if s.Signature == nil {
			s.Signature = &SignatureOptions{}
		}
	}
}
