package log

import (
	"encoding/json"
	"log"
	"time"
)

type entry struct {
	TS        string         `json:"ts"`
	Level     string         `json:"level"`
	Method    string         `json:"method,omitempty"`
	Path      string         `json:"path,omitempty"`
	Action    string         `json:"action,omitempty"`
	Status    int            `json:"status,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Err       string         `json:"err,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func write(e entry) {
	e.TS = time.Now().UTC().Format(time.RFC3339)
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

func Info(action string, fields map[string]any) {
	write(entry{Level: "info", Action: action, Fields: fields})
}

func Audit(action string, fields map[string]any) {
	write(entry{Level: "audit", Action: action, Fields: fields})
}

func Error(action string, err error, fields map[string]any) {
	e := entry{Level: "error", Action: action, Fields: fields}
	if err != nil {
		e.Err = err.Error()
	}
	write(e)
}

// Request logs one router dispatch with its final status and total latency.
func Request(method, path string, status int, latency time.Duration) {
	write(entry{
		Level:     "info",
		Action:    "router.dispatch",
		Method:    method,
		Path:      path,
		Status:    status,
		LatencyMs: latency.Milliseconds(),
	})
}
