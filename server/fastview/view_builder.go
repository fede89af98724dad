package fastview

import (
	"context"
	"errors"

	channerics "github.com/niceyeti/channerics/channels"
)

// ViewBuilderFunc builds a view from a done channel and its view-model channel.
type ViewBuilderFunc[ViewModel any] func(<-chan struct{}, <-chan ViewModel) ViewComponent

// ViewBuilder wires a stream of data models to a set of views. Every item is converted to
// a view-model once and the result is broadcast to each view, in the order views were added.
type ViewBuilder[DataModel any, ViewModel any] struct {
	ctx     context.Context
	source  <-chan DataModel
	convert func(DataModel) ViewModel
	views   []ViewBuilderFunc[ViewModel]
}

func NewViewBuilder[DataModel any, ViewModel any]() *ViewBuilder[DataModel, ViewModel] {
	return &ViewBuilder[DataModel, ViewModel]{}
}

// WithContext bounds the pipeline: cancelling ctx stops the conversion and closes every
// view's input.
func (vb *ViewBuilder[DataModel, ViewModel]) WithContext(
	ctx context.Context,
) *ViewBuilder[DataModel, ViewModel] {
	vb.ctx = ctx
	return vb
}

// WithModel sets the data model stream and its view-model conversion.
func (vb *ViewBuilder[DataModel, ViewModel]) WithModel(
	source <-chan DataModel,
	convert func(DataModel) ViewModel,
) *ViewBuilder[DataModel, ViewModel] {
	vb.source = source
	vb.convert = convert
	return vb
}

// WithView adds a view.
func (vb *ViewBuilder[DataModel, ViewModel]) WithView(
	view ViewBuilderFunc[ViewModel],
) *ViewBuilder[DataModel, ViewModel] {
	vb.views = append(vb.views, view)
	return vb
}

var (
	// ErrNoViews is returned when Build() is called before any views were added.
	ErrNoViews = errors.New("no views to build: WithView must be called")
	// ErrNoModel is returned when Build() is called before WithModel().
	ErrNoModel = errors.New("no model specified: WithModel must be called")
	// ErrNoContext is returned when Build() is called before WithContext().
	ErrNoContext = errors.New("no context specified: WithContext must be called")
)

// Build starts the pipeline and returns the views.
func (vb *ViewBuilder[DataModel, ViewModel]) Build() ([]ViewComponent, error) {
	switch {
	case len(vb.views) == 0:
		return nil, ErrNoViews
	case vb.source == nil || vb.convert == nil:
		return nil, ErrNoModel
	case vb.ctx == nil:
		return nil, ErrNoContext
	}

	done := vb.ctx.Done()
	inputs := channerics.Broadcast(done, channerics.Convert(done, vb.source, vb.convert), len(vb.views))

	views := make([]ViewComponent, len(vb.views))
	for i, build := range vb.views {
		views[i] = build(done, inputs[i])
	}
	return views, nil
}
