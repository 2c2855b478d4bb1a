package metrics

import (
	"io"
	"net/http"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Metric family names.
const (
	InputsTotal    = "quickcalc_inputs_total"
	ErrorsTotal    = "quickcalc_errors_total"
	NoteSavesTotal = "quickcalc_notes_saves_total"
	SessionsActive = "quickcalc_sessions_active"
	NotesStored    = "quickcalc_notes"
	WSClients      = "quickcalc_ws_clients"
)

type gauge struct {
	name, help string
	fn         func() float64
}

// Registry holds labelled counters and callback gauges.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	inputs    map[string]float64
	errors    map[string]float64
	noteSaves map[string]float64
	gauges    []gauge
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		inputs:    make(map[string]float64),
		errors:    make(map[string]float64),
		noteSaves: make(map[string]float64),
	}
}

// IncInput counts one applied calculator input of the given kind.
func (r *Registry) IncInput(kind string) {
	r.mu.Lock()
	r.inputs[kind]++
	r.mu.Unlock()
}

// IncError counts one calculator error of the given kind.
func (r *Registry) IncError(kind string) {
	r.mu.Lock()
	r.errors[kind]++
	r.mu.Unlock()
}

// ObserveNoteSave counts one write of the notes document.
func (r *Registry) ObserveNoteSave(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.mu.Lock()
	r.noteSaves[result]++
	r.mu.Unlock()
}

// AddGauge registers a gauge whose value is read from fn at gather time.
func (r *Registry) AddGauge(name, help string, fn func() float64) {
	r.mu.Lock()
	r.gauges = append(r.gauges, gauge{name: name, help: help, fn: fn})
	r.mu.Unlock()
}

// Gather returns all non-empty metric families sorted by name.
func (r *Registry) Gather() []*dto.MetricFamily {
	r.mu.Lock()
	out := make([]*dto.MetricFamily, 0, 3+len(r.gauges))
	for _, mf := range []*dto.MetricFamily{
		counterFamily(InputsTotal, "Calculator inputs applied, by input kind.", "kind", r.inputs),
		counterFamily(ErrorsTotal, "Calculator errors, by error kind.", "error", r.errors),
		counterFamily(NoteSavesTotal, "Writes of the notes document, by result.", "result", r.noteSaves),
	} {
		if len(mf.GetMetric()) > 0 {
			out = append(out, mf)
		}
	}
	gauges := append([]gauge(nil), r.gauges...)
	r.mu.Unlock()

	// Gauge callbacks may take other locks; call them outside r.mu.
	for _, g := range gauges {
		out = append(out, &dto.MetricFamily{
			Name: proto.String(g.name),
			Help: proto.String(g.help),
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{
				Gauge: &dto.Gauge{Value: proto.Float64(g.fn())},
			}},
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// WriteText encodes all families in the Prometheus text format.
func (r *Registry) WriteText(w io.Writer) error {
	for _, mf := range r.Gather() {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// ServeHTTP serves the text exposition.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	r.WriteText(w) //nolint:errcheck
}

// counterFamily builds a one-label counter family from values. Callers hold r.mu.
func counterFamily(name, help, label string, values map[string]float64) *dto.MetricFamily {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mf := &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, k := range keys {
		mf.Metric = append(mf.Metric, &dto.Metric{
			Label:   []*dto.LabelPair{{Name: proto.String(label), Value: proto.String(k)}},
			Counter: &dto.Counter{Value: proto.Float64(values[k])},
		})
	}
	return mf
}
