// File: internal/compose/appearance.go
package compose

import (
	"github.com/xkilldash9x/formforge/internal/document"
	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/style"
)

// Appearance composes the visual attributes of spec. For each attribute an
// explicit field value wins over a resolved class token, which wins over the
// generator default.
func (c *Composer) Appearance(spec *fields.Spec) document.Appearance {
	tok := c.styles.ResolveClasses(spec.Classes)
	d := c.defaults

	a := document.Appearance{
		FontName:    d.FontName,
		FontSize:    d.FontSize,
		TextColor:   style.Black,
		BorderColor: style.Black,
		BorderWidth: d.BorderWidth,
		Align:       style.AlignLeft,
		Opacity:     1,
	}
	if a.FontName == "" {
		a.FontName = document.DefaultFontName
	}

	// Tokens.
	if tok.FontSize != nil {
		a.FontSize = *tok.FontSize
	}
	if tok.TextColor != nil {
		a.TextColor = *tok.TextColor
	}
	if tok.BorderColor != nil {
		a.BorderColor = *tok.BorderColor
	}
	if tok.BorderWidth != nil {
		a.BorderWidth = *tok.BorderWidth
	}
	if tok.BorderRadius != nil {
		a.BorderRadius = *tok.BorderRadius
	}
	if tok.Background != nil {
		bg := *tok.Background
		a.Background = &bg
	}
	if tok.Align != nil {
		a.Align = *tok.Align
	}
	if tok.Italic != nil {
		a.Italic = *tok.Italic
	}
	if tok.Padding != nil {
		a.Padding = *tok.Padding
	}
	if tok.Opacity != nil {
		a.Opacity = *tok.Opacity
	}
	a.Bold = tok.Bold()

	// Explicit field attributes.
	if spec.FontSize > 0 {
		a.FontSize = spec.FontSize
	}
	if spec.BorderWidth != nil {
		a.BorderWidth = *spec.BorderWidth
	}
	if spec.TextColor != nil {
		a.TextColor = style.NormalizeRGB(*spec.TextColor)
	}
	if spec.BorderColor != nil {
		a.BorderColor = style.NormalizeRGB(*spec.BorderColor)
	}
	if spec.BackgroundColor != nil {
		bg := style.NormalizeRGB(*spec.BackgroundColor)
		a.Background = &bg
	}
	if spec.Text != nil && spec.Text.Align != "" {
		a.Align = spec.Text.Align
	}
	return a
}
