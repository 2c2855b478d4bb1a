// Package metrics keeps the server's counters and gauges and renders them in
// the Prometheus text exposition format on GET /metrics.
//
// Exposed families:
//
//	quickcalc_inputs_total{kind}         calculator inputs applied, by input kind
//	quickcalc_errors_total{error}        calculator errors, by error kind
//	quickcalc_notes_saves_total{result}  note store writes, result ok|error
//	quickcalc_sessions_active            live calculator sessions (gauge)
//	quickcalc_notes                      stored notes (gauge)
//	quickcalc_ws_clients                 connected WebSocket clients (gauge)
//
// Families are built as client_model MetricFamily values and encoded with
// expfmt, the same types the Prometheus text parser produces.
package metrics
