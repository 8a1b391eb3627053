package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_String_RecvLayout(t *testing.T) {
	r := Record{
		Time: 100, Kind: KindRecv, Node: 0, PacketID: 0,
		Src: 0, Dst: 4294967295, Pre: 0, Nex: 0,
		PacketType: "TRA_ctrl_packet", Extra: " counter 0",
	}
	want := "time         100   recID          0   pktID          0   srcID          0   dstID 4294967295   preID          0   nexID          0   TRA_ctrl_packet counter 0"
	assert.Equal(t, want, r.String())
}

func TestRecord_String_SendLayout(t *testing.T) {
	r := Record{
		Time: 150, Kind: KindSend, Node: 3, PacketID: 0,
		Src: 3, Dst: 4294967295, Pre: 3, Nex: 4294967295,
		PacketType: "SDN_ctrl_packet",
	}
	want := "time         150   senID          3   pktID          0   srcID          3   dstID 4294967295   preID          3   nexID 4294967295   SDN_ctrl_packet"
	assert.Equal(t, want, r.String())
}

func TestRecord_String_GenerateLayout(t *testing.T) {
	r := Record{Time: 200, Kind: KindGenerate, Src: 1, Dst: 0, PacketType: "TRA_data_packet"}
	want := "time         200                                         srcID          1   dstID          0                                         TRA_data_packet generating"
	assert.Equal(t, want, r.String())
}

func TestRecord_String_SDNGenerateLayout(t *testing.T) {
	r := Record{
		Time: 150, Kind: KindSDNGenerate, Src: 3, Dst: 0,
		Percent: 0.35, MatID: 3, ActID: 4, PacketType: "SDN_ctrl_packet",
	}
	want := "time         150                    percent       0.35   srcID          3   dstID          0   matID          3   actID          4   SDN_ctrl_packet generating"
	assert.Equal(t, want, r.String())

	r.Percent = 1
	assert.Contains(t, r.String(), " percent          1   srcID")
}

func TestSimulationTrace_Record_AppendsAndStreams(t *testing.T) {
	// GIVEN a trace configured for events with a writer attached
	var buf bytes.Buffer
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents, Out: &buf})

	// WHEN two records are recorded
	require.NoError(t, st.Record(Record{Time: 1, Kind: KindRecv, PacketType: "TRA_data_packet"}))
	require.NoError(t, st.Record(Record{Time: 2, Kind: KindSend, PacketType: "TRA_data_packet"}))

	// THEN both are kept and streamed one per line
	if len(st.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(st.Records))
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, st.Lines(), lines)
}

func TestSimulationTrace_LevelNone_RecordsNothing(t *testing.T) {
	var buf bytes.Buffer
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelNone, Out: &buf})

	require.NoError(t, st.Record(Record{Time: 1, Kind: KindRecv}))

	assert.Empty(t, st.Records)
	assert.Zero(t, buf.Len())
	assert.False(t, st.Enabled())
}

func TestSimulationTrace_Discard_StreamsOnly(t *testing.T) {
	var buf bytes.Buffer
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents, Out: &buf, Discard: true})

	require.NoError(t, st.Record(Record{Time: 1, Kind: KindRecv}))

	assert.Empty(t, st.Records)
	assert.NotZero(t, buf.Len())
}

func TestSimulationTrace_NilIsSafe(t *testing.T) {
	var st *SimulationTrace
	assert.False(t, st.Enabled())
	assert.NoError(t, st.Record(Record{}))
	assert.Nil(t, st.Lines())
}

func TestIsValidTraceLevel(t *testing.T) {
	assert.True(t, IsValidTraceLevel(""))
	assert.True(t, IsValidTraceLevel("none"))
	assert.True(t, IsValidTraceLevel("events"))
	assert.False(t, IsValidTraceLevel("decisions"))
}
