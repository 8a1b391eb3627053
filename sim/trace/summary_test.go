package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalEvents != 0 {
		t.Errorf("expected 0 total events, got %d", summary.TotalEvents)
	}
	if summary.Receives != 0 || summary.Sends != 0 || summary.Generations != 0 {
		t.Error("expected 0 receives, sends and generations")
	}
	if len(summary.PacketTypes) != 0 {
		t.Error("expected empty packet type distribution")
	}
}

func TestSummarize_NilTrace(t *testing.T) {
	summary := Summarize(nil)
	if summary == nil || summary.TotalEvents != 0 {
		t.Fatalf("expected zero summary for nil trace, got %+v", summary)
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with one generation, two receives and one send
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})
	_ = st.Record(Record{Time: 100, Kind: KindGenerate, PacketType: "TRA_ctrl_packet"})
	_ = st.Record(Record{Time: 100, Kind: KindRecv, Node: 0, PacketType: "TRA_ctrl_packet"})
	_ = st.Record(Record{Time: 100, Kind: KindSend, Node: 0, PacketType: "TRA_ctrl_packet"})
	_ = st.Record(Record{Time: 110, Kind: KindRecv, Node: 1, PacketType: "TRA_ctrl_packet"})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalEvents != 4 {
		t.Errorf("expected 4 events, got %d", summary.TotalEvents)
	}
	if summary.Receives != 2 || summary.Sends != 1 || summary.Generations != 1 {
		t.Errorf("unexpected split: recv=%d send=%d gen=%d", summary.Receives, summary.Sends, summary.Generations)
	}
	if summary.LastTime != 110 {
		t.Errorf("expected last time 110, got %d", summary.LastTime)
	}
	if summary.PacketTypes["TRA_ctrl_packet"] != 3 {
		t.Errorf("expected 3 TRA_ctrl_packet records, got %d", summary.PacketTypes["TRA_ctrl_packet"])
	}
	if summary.BusiestNodes[1] != 1 {
		t.Errorf("expected node 1 to receive once, got %d", summary.BusiestNodes[1])
	}
}
