package state

type NodeId int

// Label returns the display label of a node: A..Z, then AA, AB, ...
func Label(id NodeId) string {
	if id < 0 {
		return "None"
	}
	n := int(id)
	out := make([]byte, 0, 2)
	for {
		out = append(out, byte('A'+n%26))
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// Labels is the fixed bijection between node ids and labels.
type Labels struct {
	labels []string
	ids    map[string]NodeId
}

func NewLabels(total int) *Labels {
	l := &Labels{
		labels: make([]string, total),
		ids:    make(map[string]NodeId, total),
	}
	for i := range total {
		lbl := Label(NodeId(i))
		l.labels[i] = lbl
		l.ids[lbl] = NodeId(i)
	}
	return l
}

func (l *Labels) Of(id NodeId) string {
	if id < 0 || int(id) >= len(l.labels) {
		return "None"
	}
	return l.labels[id]
}

func (l *Labels) Id(label string) (NodeId, bool) {
	id, ok := l.ids[label]
	return id, ok
}

func (l *Labels) Len() int {
	return len(l.labels)
}
