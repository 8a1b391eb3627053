package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents  int
	Receives     int
	Sends        int
	Generations  int
	LastTime     uint64
	PacketTypes  map[string]int // packet type → count of recv/send records
	BusiestNodes map[uint32]int // node ID → count of recv records
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PacketTypes:  make(map[string]int),
		BusiestNodes: make(map[uint32]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalEvents = len(st.Records)
	for _, r := range st.Records {
		if r.Time > summary.LastTime {
			summary.LastTime = r.Time
		}
		switch r.Kind {
		case KindRecv:
			summary.Receives++
			summary.PacketTypes[r.PacketType]++
			summary.BusiestNodes[r.Node]++
		case KindSend:
			summary.Sends++
			summary.PacketTypes[r.PacketType]++
		case KindGenerate, KindSDNGenerate:
			summary.Generations++
		}
	}
	return summary
}
