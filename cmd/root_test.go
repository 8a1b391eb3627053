package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trasdn/netsim/sim"
	"github.com/trasdn/netsim/sim/scenario"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.ErrorLevel)
	}
	os.Exit(m.Run())
}

const lineInput = "3 1 2 0 1000 0 0\n0\n0 1 100\n1 1\n2 1\n0 0 1\n1 1 2\n"

// goldenCase mirrors the fields of testdata/goldendataset.json the CLI
// tests need.
type goldenCase struct {
	Name   string `json:"name"`
	Input  string `json:"input"`
	Trace  string `json:"trace"`
	Report string `json:"report"`
}

func TestRunSimulation_GoldenDataset(t *testing.T) {
	data, err := os.ReadFile("../testdata/goldendataset.json")
	require.NoError(t, err)
	var dataset struct {
		Tests []goldenCase `json:"tests"`
	}
	require.NoError(t, json.Unmarshal(data, &dataset))
	require.NotEmpty(t, dataset.Tests)

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			trace, err := os.ReadFile(filepath.Join("../testdata", tc.Trace))
			require.NoError(t, err)

			var out bytes.Buffer
			opts := runOptions{InputPath: "-", TraceLevel: "events"}
			require.NoError(t, runSimulation(opts, strings.NewReader(tc.Input), &out))
			assert.Equal(t, string(trace)+tc.Report, out.String())
		})
	}
}

func TestRunSimulation_TraceNone_PrintsOnlyReport(t *testing.T) {
	var out bytes.Buffer
	opts := runOptions{InputPath: "-", TraceLevel: "none", Verify: true}
	require.NoError(t, runSimulation(opts, strings.NewReader(lineInput), &out))
	assert.Equal(t, "\n0\n0 0\n1\n0 0\n2\n0 1\n", out.String())
}

func TestRunSimulation_HorizonOverride(t *testing.T) {
	var out bytes.Buffer
	opts := runOptions{InputPath: "-", TraceLevel: "none", Horizon: 110}
	require.NoError(t, runSimulation(opts, strings.NewReader(lineInput), &out))
	// node 2 has not heard the advertisement yet
	assert.Equal(t, "\n0\n0 0\n1\n0 0\n2\n0 0\n", out.String())
}

func TestRunSimulation_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.yaml")
	yamlData := `
horizon: 1000
nodes: [{id: 0}, {id: 1}, {id: 2}]
links: [{a: 0, b: 1}, {a: 1, b: 2}]
destinations: [{id: 2, broadcast_at: 5}]
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o644))

	var out bytes.Buffer
	opts := runOptions{ScenarioPath: path, TraceLevel: "none", Jitter: 3}
	require.NoError(t, runSimulation(opts, nil, &out))
	assert.Equal(t, "\n0\n2 1\n1\n2 2\n2\n2 2\n", out.String())
}

func TestRunSimulation_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts runOptions
		in   string
		want string
	}{
		{"no input", runOptions{TraceLevel: "none"}, "", "required"},
		{"both inputs", runOptions{ScenarioPath: "a.yaml", InputPath: "-", TraceLevel: "none"}, "", "mutually exclusive"},
		{"bad trace level", runOptions{InputPath: "-", TraceLevel: "verbose"}, lineInput, "trace level"},
		{"bad input", runOptions{InputPath: "-", TraceLevel: "none"}, "3 1", "link count"},
		{"missing file", runOptions{ScenarioPath: "/nonexistent/s.yaml", TraceLevel: "none"}, "", "reading scenario"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := runSimulation(tc.opts, strings.NewReader(tc.in), &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRouteGraph_LeavesOutUnlinkedController(t *testing.T) {
	tests := []struct {
		name       string
		yaml       string
		controller sim.NodeID
		nodes      int
	}{
		{
			name: "TRA only",
			yaml: `
nodes: [{id: 0}, {id: 1}, {id: 2}]
links: [{a: 0, b: 1}, {a: 1, b: 2}]
`,
			controller: 3,
			nodes:      3,
		},
		{
			name: "with SDN switch",
			yaml: `
nodes: [{id: 0}, {id: 1, type: SDN_switch}, {id: 2}]
links: [{a: 0, b: 1}, {a: 1, b: 2}]
`,
			controller: 3,
			nodes:      4,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sc, err := scenario.ParseYAML([]byte("horizon: 100\n" + tc.yaml))
			require.NoError(t, err)
			s := sim.NewSimulator(sc.SimConfig(sim.DefaultConfig()))
			net, err := sc.Build(s)
			require.NoError(t, err)
			require.Equal(t, tc.controller, net.Controller)

			g := routeGraph(s, net)
			assert.True(t, g.Connected(), "components: %v", g.Components())
			assert.Len(t, g.Nodes(), tc.nodes)
		})
	}
}

func TestPrintTypes(t *testing.T) {
	var out bytes.Buffer
	printTypes(&out, newDefaultSimulator())
	s := out.String()
	for _, tag := range []string{"TRA_switch", "SDN_controller", "simple_link", "jitter_link",
		"recv_event", "SDN_ctrl_pkt_gen_event", "TRA_data_packet", "TRA_ctrl_header", "SDN_ctrl_payload"} {
		assert.Contains(t, s, "  "+tag+"\n")
	}
	assert.True(t, strings.HasPrefix(s, "header:\n"))
}
