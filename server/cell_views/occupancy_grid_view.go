package cell_views

import (
	"fmt"
	"html/template"

	"autonomy/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// cellDim is the cell height and width in pixels.
const cellDim = 40

// OccupancyGrid draws the room as an svg rect per cell, colored by what occupies it.
type OccupancyGrid struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewOccupancyGrid(
	done <-chan struct{},
	frames <-chan Frame,
) (og *OccupancyGrid) {
	og = &OccupancyGrid{id: "occupancygrid"}
	og.updates = channerics.Convert(done, frames, og.onUpdate)
	return
}

func (og *OccupancyGrid) Updates() <-chan []fastview.EleUpdate {
	return og.updates
}

func cellId(x, y int) string {
	return fmt.Sprintf("cell-%d-%d", x, y)
}

// onUpdate sets every cell's fill; the page batching drops redundant ones.
func (og *OccupancyGrid) onUpdate(frame Frame) (ops []fastview.EleUpdate) {
	for _, col := range frame.Cells {
		for _, cell := range col {
			ops = append(ops, fastview.EleUpdate{
				EleId: cellId(cell.X, cell.Y),
				Ops: []fastview.Op{
					{Key: "fill", Value: cell.Fill},
				},
			})
		}
	}
	return
}

// Parse adds the svg grid template. It relies on the parent's "mult" func.
func (og *OccupancyGrid) Parse(
	t *template.Template,
) (name string, err error) {
	name = og.id
	_, err = t.Funcs(template.FuncMap{"cellId": cellId}).Parse(
		`{{ define "` + name + `" }}
		<div style="padding:20px;">
			{{ $cell_dim := ` + fmt.Sprintf("%d", cellDim) + ` }}
			<svg id="` + og.id + `" xmlns='http://www.w3.org/2000/svg'
				width="{{ mult $cell_dim .Width }}px"
				height="{{ mult $cell_dim .Height }}px"
				style="shape-rendering: crispEdges;">
				{{ range $col := .Cells }}
					{{ range $cell := $col }}
						<rect id="{{ cellId $cell.X $cell.Y }}"
							x="{{ mult $cell.X $cell_dim }}" y="{{ mult $cell.Y $cell_dim }}"
							width="{{ $cell_dim }}" height="{{ $cell_dim }}"
							fill="{{ $cell.Fill }}" stroke="lightgrey" />
					{{ end }}
				{{ end }}
			</svg>
		</div>
		{{ end }}`)
	return
}
