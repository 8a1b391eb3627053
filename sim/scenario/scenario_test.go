package scenario

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trasdn/netsim/sim"
	"github.com/trasdn/netsim/sim/internal/testutil"
	"github.com/trasdn/netsim/sim/trace"
)

func runScenario(t *testing.T, sc *Scenario) (*sim.Simulator, *Network, string) {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.Trace.Level = trace.TraceLevelEvents
	simulator := sim.NewSimulator(sc.SimConfig(cfg))
	net, err := sc.Build(simulator)
	require.NoError(t, err)
	require.NoError(t, simulator.Run(sim.Time(sc.Horizon)))

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, simulator, net))
	return simulator, net, buf.String()
}

func TestParseText_Line(t *testing.T) {
	sc, err := ParseText(strings.NewReader(testutil.GoldenCase(t, "line3").Input))
	require.NoError(t, err)

	assert.Equal(t, uint64(1000), sc.Horizon)
	assert.Equal(t, []DestinationSpec{{ID: 0, BroadcastAt: 100}}, sc.Destinations)
	assert.Equal(t, []NodeSpec{
		{ID: 0, Cost: 1, Type: "TRA_switch"},
		{ID: 1, Cost: 1, Type: "TRA_switch"},
		{ID: 2, Cost: 1, Type: "TRA_switch"},
	}, sc.Nodes)
	assert.Equal(t, []LinkSpec{{ID: 0, A: 0, B: 1}, {ID: 1, A: 1, B: 2}}, sc.Links)
	assert.Empty(t, sc.Flows)
	assert.NoError(t, sc.Validate())
}

func TestParseText_Flows(t *testing.T) {
	in := "2 1 1 1 500 0 0\n1\n0 3\n1 4 50\n0 0 1\n0 0 1 1500\n"
	sc, err := ParseText(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []FlowSpec{{ID: 0, Src: 0, Dst: 1, Size: 1500}}, sc.Flows)
	assert.Equal(t, []DestinationSpec{{ID: 1, BroadcastAt: 50}}, sc.Destinations)
	assert.Equal(t, 4, sc.Nodes[1].Cost)
}

func TestParseText_Errors(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty", "", "node count"},
		{"truncated", "3 1 2 0 1000 0 0\n0\n0 1", "broadcast time"},
		{"negative", "3 1 2 0 -5 0 0", "horizon"},
		{"not a number", "3 x", "destination count"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseText(strings.NewReader(tc.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRunText_MatchesGoldenDataset(t *testing.T) {
	for _, tc := range testutil.LoadGoldenDataset(t).Tests {
		t.Run(tc.Name, func(t *testing.T) {
			sc, err := ParseText(strings.NewReader(tc.Input))
			require.NoError(t, err)

			simulator, net, report := runScenario(t, sc)
			assert.Equal(t, tc.Report, report)
			testutil.AssertLinesEqual(t, tc.TraceLines(t), simulator.Trace.Lines())
			assert.Equal(t, sim.Time(tc.EndTime), simulator.Clock())
			assert.Equal(t, sim.NodeID(len(sc.Nodes)), net.Controller)
			assert.Equal(t, 0, simulator.Packets().Live())
		})
	}
}

func TestRunText_Ring_WithSDNSelection(t *testing.T) {
	sc, err := ParseText(strings.NewReader(testutil.GoldenCase(t, "ring4").Input))
	require.NoError(t, err)
	sc.SelectSDN = true
	sc.Budget = 1

	simulator, net, report := runScenario(t, sc)
	assert.Equal(t, []sim.NodeID{1}, net.SDN)
	assert.True(t, simulator.Node(4).Base().HasNeighbor(1))
	assert.Equal(t, "1 \n0\n0 0\n3 2\n1\n0 3 2\n0 0\n3 3\n3\n0 2\n3 3\n", report)
	assert.Equal(t, 0, simulator.Packets().Live())
}

func TestSelectSDNNodes(t *testing.T) {
	tests := []struct {
		name   string
		costs  []int
		budget int
		dsts   []uint32
		want   []uint32
	}{
		{"skips destinations", []int{1, 2, 3, 4, 5}, 4, []uint32{0}, []uint32{1, 2}},
		{"zero budget", []int{1, 1}, 0, nil, nil},
		{"unsorted destinations", []int{1, 1, 1, 1}, 10, []uint32{3, 1}, []uint32{0, 2}},
		{"crossing node still taken", []int{10, 1}, 5, nil, []uint32{0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SelectSDNNodes(tc.costs, tc.budget, tc.dsts))
		})
	}
}

func TestParseYAML_StrictFields(t *testing.T) {
	_, err := ParseYAML([]byte("horizon: 10\nnodez: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nodez")
}

func TestScenario_YAML_DataAndRules(t *testing.T) {
	data := `
horizon: 1000
sdn_control_time: 150
nodes:
  - {id: 0}
  - {id: 1}
  - {id: 2}
links:
  - {a: 0, b: 1}
  - {a: 1, b: 2}
destinations:
  - {id: 0, broadcast_at: 100}
data:
  - {src: 2, dst: 0, at: 200, msg: ping}
  - {src: 1, broadcast: true, at: 300, msg: all}
`
	sc, err := ParseYAML([]byte(data))
	require.NoError(t, err)

	simulator, net, report := runScenario(t, sc)
	assert.Equal(t, "\n0\n0 0\n1\n0 0\n2\n0 1\n", report)
	assert.Empty(t, net.SDN)
	assert.Equal(t, []string{"ping", "all"}, simulator.Node(0).(*sim.TRASwitch).Delivered())
	assert.Equal(t, []string{"all"}, simulator.Node(2).(*sim.TRASwitch).Delivered())
	assert.Equal(t, 0, simulator.Packets().Live())
}

func TestScenario_YAML_SDNRule(t *testing.T) {
	data := `
horizon: 1000
sdn_control_time: 150
nodes:
  - {id: 0}
  - {id: 1, type: SDN_switch}
links:
  - {a: 0, b: 1}
destinations:
  - {id: 0, broadcast_at: 100}
sdn_rules:
  - {switch: 1, match: 0, action: 0, percent: 0.5}
`
	sc, err := ParseYAML([]byte(data))
	require.NoError(t, err)

	simulator, net, report := runScenario(t, sc)
	assert.Equal(t, []sim.NodeID{1}, net.SDN)
	assert.Equal(t, sim.NodeID(2), net.Controller)
	assert.Equal(t, "1 \n0\n0 0\n1\n0 ", report)

	con := simulator.Node(2).(*sim.SDNController)
	assert.Equal(t, map[sim.NodeID][]sim.WeightedHop{2: {{Next: 2, Weight: 1}}}, con.RoutingTable())
	assert.Contains(t, simulator.Trace.Lines(),
		"time         150                    percent        0.5   srcID          2   dstID          1   matID          0   actID          0   SDN_ctrl_packet generating")
	assert.Equal(t, 0, simulator.Packets().Live())
}

func TestScenario_Jitter(t *testing.T) {
	data := `
horizon: 1000
link_type: jitter_link
jitter: {base: 10, spread: 4}
nodes: [{id: 0}, {id: 1}, {id: 2}]
links: [{a: 0, b: 1}, {a: 1, b: 2}]
destinations: [{id: 0, broadcast_at: 100}]
`
	sc, err := ParseYAML([]byte(data))
	require.NoError(t, err)

	simulator, _, report := runScenario(t, sc)
	assert.Equal(t, "\n0\n0 0\n1\n0 0\n2\n0 1\n", report)
	assert.Equal(t, sim.JitterLink, simulator.LinkBetween(0, 1).Type())
	assert.Equal(t, 0, simulator.Packets().Live())
}

func TestScenario_JitterSeed(t *testing.T) {
	data := `
horizon: 1000
link_type: jitter_link
jitter: {base: 10, spread: 6, seed: 42}
nodes: [{id: 0}, {id: 1}, {id: 2}, {id: 3}]
links: [{a: 0, b: 1}, {a: 1, b: 2}, {a: 2, b: 3}, {a: 3, b: 0}]
destinations: [{id: 0, broadcast_at: 100}]
`
	sc, err := ParseYAML([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), sc.SimConfig(sim.DefaultConfig()).Seed)

	sc.Jitter.Seed = 0
	assert.Equal(t, sim.DefaultSeed, sc.SimConfig(sim.DefaultConfig()).Seed)

	sc.Jitter.Seed = 42
	first, _, firstReport := runScenario(t, sc)
	second, _, secondReport := runScenario(t, sc)
	assert.Equal(t, first.Trace.Lines(), second.Trace.Lines())
	assert.Equal(t, firstReport, secondReport)
}

func TestScenario_Validate(t *testing.T) {
	base := func() *Scenario {
		return &Scenario{
			Horizon:      100,
			Nodes:        []NodeSpec{{ID: 0}, {ID: 1}},
			Links:        []LinkSpec{{A: 0, B: 1}},
			Destinations: []DestinationSpec{{ID: 0}},
		}
	}
	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(*Scenario)
		want   string
	}{
		{"no nodes", func(s *Scenario) { s.Nodes = nil }, "no nodes"},
		{"duplicate node", func(s *Scenario) { s.Nodes = append(s.Nodes, NodeSpec{ID: 1}) }, "duplicate id"},
		{"reserved id", func(s *Scenario) { s.Nodes[0].ID = 4294967295 }, "reserved"},
		{"bad node type", func(s *Scenario) { s.Nodes[0].Type = "router" }, "unknown type"},
		{"dangling link", func(s *Scenario) { s.Links[0].B = 9 }, "unknown node"},
		{"self loop", func(s *Scenario) { s.Links[0].B = 0 }, "self-loop"},
		{"unknown destination", func(s *Scenario) { s.Destinations[0].ID = 9 }, "unknown node"},
		{"bad link type", func(s *Scenario) { s.LinkType = "fiber" }, "link_type"},
		{"jitter without jitter links", func(s *Scenario) { s.Jitter = &JitterSpec{Spread: 1} }, "jitter"},
		{"percent out of range", func(s *Scenario) {
			s.Rules = []RuleSpec{{Switch: 1, Percent: 1.5}}
		}, "percent"},
		{"data to unknown node", func(s *Scenario) { s.Data = []DataSpec{{Src: 0, Dst: 7}} }, "unknown dst"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := base()
			tc.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
