package cell_views

import (
	"fmt"
	"html/template"

	"autonomy/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// Status is a small table of the robot's readouts.
type Status struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewStatus(
	done <-chan struct{},
	frames <-chan Frame,
) (st *Status) {
	st = &Status{id: "status"}
	st.updates = channerics.Convert(done, frames, st.onUpdate)
	return
}

func (st *Status) Updates() <-chan []fastview.EleUpdate {
	return st.updates
}

// statusFields returns the element suffix and value of each readout, in display order.
func statusFields(frame Frame) [][2]string {
	return [][2]string{
		{"tick", fmt.Sprint(frame.Tick)},
		{"mode", frame.Mode},
		{"state", frame.Status},
		{"battery", frame.Battery},
		{"goal", frame.Goal},
		{"path", fmt.Sprint(frame.PathLen)},
		{"replans", fmt.Sprint(frame.Replans)},
	}
}

func (st *Status) onUpdate(frame Frame) (ops []fastview.EleUpdate) {
	for _, field := range statusFields(frame) {
		ops = append(ops, fastview.EleUpdate{
			EleId: st.id + "-" + field[0],
			Ops: []fastview.Op{
				{Key: "textContent", Value: field[1]},
			},
		})
	}
	return
}

func (st *Status) Parse(
	t *template.Template,
) (name string, err error) {
	name = st.id
	_, err = t.Funcs(template.FuncMap{"statusFields": statusFields}).Parse(
		`{{ define "` + name + `" }}
		<table id="` + st.id + `" style="font-family: monospace; padding: 20px;">
			{{ range $field := statusFields . }}
				<tr>
					<td>{{ index $field 0 }}</td>
					<td id="` + st.id + `-{{ index $field 0 }}">{{ index $field 1 }}</td>
				</tr>
			{{ end }}
		</table>
		{{ end }}`)
	return
}
