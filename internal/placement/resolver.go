// File: internal/placement/resolver.go
package placement

import (
	"fmt"
	"math"

	"github.com/xkilldash9x/formforge/internal/fields"
	"github.com/xkilldash9x/formforge/internal/geometry"
)

// Outcome is the placement decision for one field: either placed on a page
// or skipped with a reason.
type Outcome struct {
	Placed bool
	Rect   geometry.DocRect
	Page   int
	Reason fields.Reason
	Detail string
}

func placed(r geometry.DocRect, page int) Outcome {
	return Outcome{Placed: true, Rect: r, Page: page}
}

func skipped(reason fields.Reason, format string, a ...any) Outcome {
	return Outcome{Reason: reason, Detail: fmt.Sprintf(format, a...)}
}

// Skip converts a skipped outcome into the record surfaced to callers.
func (o Outcome) Skip(name string) fields.Skipped {
	return fields.Skipped{Name: name, Reason: o.Reason, Detail: o.Detail}
}

// Defaults are the generator-wide fallback sizes in points.
type Defaults struct {
	Width           float64
	Height          float64
	SignatureHeight float64
}

// PageGeometry describes how the renderer paginated the document, in
// rendering pixels. It lets a document offset be mapped onto a page.
type PageGeometry struct {
	// ContentHeight is the height of one page's content box.
	ContentHeight float64
	// TopInset is the distance from the page edge to its content box.
	TopInset float64
	// PageHeight is the full page height, used as the viewport when flipping.
	PageHeight float64
}

// Resolver decides where each field goes. It never fails for a single field.
type Resolver struct {
	rc       geometry.Reconciler
	defaults Defaults
	pages    *PageGeometry
}

// NewResolver builds a Resolver. pages may be nil when the rendered page
// geometry is unknown; every selector-derived field then lands on page 0.
func NewResolver(rc geometry.Reconciler, d Defaults, pages *PageGeometry) *Resolver {
	return &Resolver{rc: rc, defaults: d, pages: pages}
}

// Resolve places spec using the selector results in lookup. pageCount is the
// number of pages that exist in the document.
func (r *Resolver) Resolve(spec *fields.Spec, lookup Lookup, pageCount int) Outcome {
	var (
		rect    geometry.DocRect
		page    int
		derived bool
	)

	switch {
	case spec.Position != nil:
		rect = spec.Position.DocRect()

	case spec.Selector != "":
		raw := lookup[spec.Selector]
		if raw == nil {
			return skipped(fields.ReasonSelectorNotFound, "no element matches %q", spec.Selector)
		}
		var local geometry.RawRect
		page, local = r.localize(*raw)
		rect = r.rc.ToDocSpace(local)
		derived = true

	default:
		return skipped(fields.ReasonNoPlacement, "field has neither selector nor position")
	}

	if spec.Page != nil {
		page = *spec.Page
	}

	// A positive OffsetY moves the field up the page. Y runs top-down only
	// for selector-derived rectangles.
	rect.X += spec.OffsetX
	rect.FlippedY += spec.OffsetY
	if derived {
		rect.Y -= spec.OffsetY
	} else {
		rect.Y += spec.OffsetY
	}

	r.resize(spec, &rect, derived)

	if page < 0 || page >= pageCount {
		return skipped(fields.ReasonInvalidPage, "page %d does not exist (document has %d)", page, pageCount)
	}
	return placed(rect, page)
}

// localize finds the page an element starts on and re-expresses its
// rectangle relative to that page.
func (r *Resolver) localize(raw geometry.RawRect) (int, geometry.RawRect) {
	if r.pages == nil || r.pages.ContentHeight <= 0 {
		return 0, raw
	}
	page := int(math.Floor(raw.Top / r.pages.ContentHeight))
	if page < 0 {
		page = 0
	}
	local := raw
	local.Top = raw.Top - float64(page)*r.pages.ContentHeight + r.pages.TopInset
	if r.pages.PageHeight > 0 {
		local.ViewportHeight = r.pages.PageHeight
	}
	return page, local
}

// resize applies override > derived > default. Selector-derived rectangles
// keep their top edge; explicit positions keep their bottom-left corner.
func (r *Resolver) resize(spec *fields.Spec, rect *geometry.DocRect, derived bool) {
	defH := r.defaults.Height
	if spec.Kind == fields.KindSignature && r.defaults.SignatureHeight > 0 {
		defH = r.defaults.SignatureHeight
	}
	w := pick(spec.Width, rect.Width, r.defaults.Width)
	h := pick(spec.Height, rect.Height, defH)

	if derived {
		rect.FlippedY += rect.Height - h
	}
	rect.Width, rect.Height = w, h
}

func pick(override, derived, fallback float64) float64 {
	if override > 0 {
		return override
	}
	if derived > 0 {
		return derived
	}
	return fallback
}
