// fastview builds simple server-side views: input data is converted to a view-model,
// multiplexed to one or more views, and each view emits element updates for the page.
package fastview

import (
	"html/template"
)

// EleUpdate is an element id and the operations to apply to its attributes or content.
type EleUpdate struct {
	EleId string
	// Op keys are attribute names, or 'textContent' to set the element's text.
	Ops []Op
}

// Op is a key and value, e.g. an html attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// ViewComponent is a server-side view: Parse adds its initial markup to a page template and
// Updates streams the element updates that keep it current.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	// Parse adds the view's template to parent, inheriting its func-map, and returns the
	// template name to embed.
	Parse(parent *template.Template) (string, error)
}
