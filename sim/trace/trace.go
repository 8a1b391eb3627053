package trace

import (
	"fmt"
	"io"
)

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures one record per triggered event.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
	// Out, when set, receives every record as a line as soon as it is recorded.
	Out io.Writer
	// Discard drops records after streaming them to Out instead of keeping them.
	Discard bool
}

// SimulationTrace collects event records during a simulation.
type SimulationTrace struct {
	Config  TraceConfig
	Records []Record
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:  config,
		Records: make([]Record, 0),
	}
}

// Enabled reports whether records are being collected. Safe on nil.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelEvents
}

// Record appends an event record and streams it to the configured writer.
// A write failure is returned but the record is kept.
func (st *SimulationTrace) Record(record Record) error {
	if !st.Enabled() {
		return nil
	}
	if !st.Config.Discard {
		st.Records = append(st.Records, record)
	}
	if st.Config.Out != nil {
		if _, err := fmt.Fprintln(st.Config.Out, record.String()); err != nil {
			return fmt.Errorf("writing trace record: %w", err)
		}
	}
	return nil
}

// Lines renders every kept record.
func (st *SimulationTrace) Lines() []string {
	if st == nil {
		return nil
	}
	lines := make([]string, len(st.Records))
	for i, r := range st.Records {
		lines[i] = r.String()
	}
	return lines
}
