// File: internal/fields/validate.go
package fields

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// Reason is a machine readable skip reason.
type Reason string

const (
	ReasonSelectorNotFound Reason = "selector-not-found"
	ReasonInvalidPage      Reason = "invalid-page"
	ReasonInvalidSpec      Reason = "invalid-spec"
	ReasonDuplicateName    Reason = "duplicate-name"
	ReasonInvalidScript    Reason = "invalid-script"
	ReasonNoPlacement      Reason = "no-placement"
	ReasonBackendRejected  Reason = "backend-rejected"
)

// Skipped records a field that was not placed.
type Skipped struct {
	Name   string `json:"name" yaml:"name"`
	Reason Reason `json:"reason" yaml:"reason"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

func (s Skipped) String() string {
	if s.Detail == "" {
		return fmt.Sprintf("%s: %s", s.Name, s.Reason)
	}
	return fmt.Sprintf("%s: %s (%s)", s.Name, s.Reason, s.Detail)
}

// InvalidError is returned by Validate. It carries the skip reason.
type InvalidError struct {
	Reason Reason
	Detail string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func invalid(reason Reason, format string, args ...any) *InvalidError {
	return &InvalidError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Validate checks the spec in isolation. Name uniqueness is the registry's job.
func (s *Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return invalid(ReasonInvalidSpec, "name must not be empty")
	}
	if !s.Kind.Valid() {
		return invalid(ReasonInvalidSpec, "unknown kind %q", s.Kind)
	}
	if s.Selector != "" && s.Position != nil {
		return invalid(ReasonInvalidSpec, "selector and position are mutually exclusive")
	}
	if s.Page != nil && *s.Page < 0 {
		return invalid(ReasonInvalidPage, "page index %d is negative", *s.Page)
	}
	if s.Width < 0 || s.Height < 0 || s.FontSize < 0 {
		return invalid(ReasonInvalidSpec, "width, height and font size must not be negative")
	}
	if s.Position != nil && (s.Position.Width < 0 || s.Position.Height < 0) {
		return invalid(ReasonInvalidSpec, "position has a negative size")
	}
	if err := s.validatePayload(); err != nil {
		return err
	}

	switch s.Kind {
	case KindText:
		if s.Text != nil && s.Text.MaxLength < 0 {
			return invalid(ReasonInvalidSpec, "max_length must not be negative")
		}
	case KindRadio:
		if s.Radio == nil || len(s.Radio.Options) == 0 {
			return invalid(ReasonInvalidSpec, "radio group needs at least one option")
		}
		seen := make(map[string]struct{}, len(s.Radio.Options))
		for _, o := range s.Radio.Options {
			if o.Value == "" {
				return invalid(ReasonInvalidSpec, "radio option value must not be empty")
			}
			if _, dup := seen[o.Value]; dup {
				return invalid(ReasonInvalidSpec, "radio option %q repeated", o.Value)
			}
			seen[o.Value] = struct{}{}
		}
	case KindDropdown:
		if s.Dropdown == nil || len(s.Dropdown.Options) == 0 {
			return invalid(ReasonInvalidSpec, "dropdown needs at least one option")
		}
	case KindButton:
		if s.Button != nil {
			return validateButton(s.Button)
		}
	}
	return nil
}

func (s *Spec) validatePayload() error {
	set := map[Kind]bool{
		KindText:      s.Text != nil,
		KindCheckbox:  s.Checkbox != nil,
		KindRadio:     s.Radio != nil,
		KindDropdown:  s.Dropdown != nil,
		KindButton:    s.Button != nil,
		KindSignature: s.Signature != nil,
	}
	for k, present := range set {
		if present && k != s.Kind {
			return invalid(ReasonInvalidSpec, "%s payload set on a %s field", k, s.Kind)
		}
	}
	return nil
}

func validateButton(b *ButtonOptions) error {
	switch b.Action {
	case "", ActionNone, ActionReset, ActionPrint:
	case ActionSubmit:
		if b.URL == "" {
			return invalid(ReasonInvalidSpec, "submit button needs a url")
		}
	case ActionScript:
		if strings.TrimSpace(b.Script) == "" {
			return invalid(ReasonInvalidScript, "script action without a script")
		}
		if _, err := goja.Compile("button", b.Script, false); err != nil {
			return invalid(ReasonInvalidScript, "%v", err)
		}
	default:
		return invalid(ReasonInvalidSpec, "unknown button action %q", b.Action)
	}
	return nil
}
