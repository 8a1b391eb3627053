package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/trasdn/netsim/sim"
	"github.com/trasdn/netsim/sim/scenario"
	"github.com/trasdn/netsim/sim/topology"
	"github.com/trasdn/netsim/sim/trace"
)

var (
	// CLI flags for the run command
	scenarioPath string // YAML scenario file
	inputPath    string // Legacy whitespace input, "-" for stdin
	horizon      uint64 // Overrides the scenario horizon when non-zero
	logLevel     string // Log verbosity level
	traceLevel   string // Trace verbosity: none or events
	selectSDN    bool   // Upgrade switches to SDN within the scenario budget
	jitter       uint64 // Spread of jitter_link latency; 0 keeps simple links
	seed         uint64 // Seed of the jitter_link streams
	verify       bool   // Check converged routing tables against shortest paths
	summary      bool   // Print a trace summary after the run
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "netsim",
	Short: "Discrete-event simulator for TRA and SDN routing",
}

// runOptions is everything runSimulation needs, detached from the flags.
type runOptions struct {
	ScenarioPath string
	InputPath    string
	Horizon      uint64
	TraceLevel   string
	SelectSDN    bool
	Jitter       uint64
	Seed         uint64
	Verify       bool
	Summary      bool
}

func loadScenario(opts runOptions, stdin io.Reader) (*scenario.Scenario, error) {
	switch {
	case opts.ScenarioPath != "" && opts.InputPath != "":
		return nil, fmt.Errorf("--scenario and --input are mutually exclusive")
	case opts.ScenarioPath != "":
		return scenario.LoadScenario(opts.ScenarioPath)
	case opts.InputPath == "-":
		return scenario.ParseText(stdin)
	case opts.InputPath != "":
		return scenario.LoadText(opts.InputPath)
	}
	return nil, fmt.Errorf("one of --scenario or --input is required")
}

// runSimulation loads, builds and runs a scenario. The trace streams to
// out, followed by the routing report.
func runSimulation(opts runOptions, stdin io.Reader, out io.Writer) error {
	if !trace.IsValidTraceLevel(opts.TraceLevel) {
		return fmt.Errorf("invalid trace level %q; valid: none, events", opts.TraceLevel)
	}
	sc, err := loadScenario(opts, stdin)
	if err != nil {
		return err
	}
	if opts.Horizon != 0 {
		sc.Horizon = opts.Horizon
	}
	if opts.SelectSDN {
		sc.SelectSDN = true
	}
	if opts.Jitter != 0 {
		sc.LinkType = "jitter_link"
		sc.Jitter = &scenario.JitterSpec{Base: uint64(sim.OneHopDelay), Spread: opts.Jitter}
	}
	if opts.Seed != 0 && sc.Jitter != nil {
		sc.Jitter.Seed = opts.Seed
	}

	cfg := sim.DefaultConfig()
	cfg.Trace = trace.TraceConfig{
		Level:   trace.TraceLevel(opts.TraceLevel),
		Out:     out,
		Discard: !opts.Summary,
	}
	s := sim.NewSimulator(sc.SimConfig(cfg))
	net, err := sc.Build(s)
	if err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}

	logrus.Infof("Starting simulation with %d nodes, %d links, horizon=%d ticks", s.NodeNum(), s.LinkNum(), sc.Horizon)
	if err := s.Run(sim.Time(sc.Horizon)); err != nil {
		return err
	}
	logrus.Infof("[tick %07d] Simulation ended, %d events pending, %d live packets", s.Clock(), s.Pending(), s.Packets().Live())

	if err := scenario.WriteReport(out, s, net); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if opts.Verify {
		verifyRoutes(s, net)
	}
	if opts.Summary {
		printSummary(os.Stderr, trace.Summarize(s.Trace))
	}
	return nil
}

func verifyRoutes(s *sim.Simulator, net *scenario.Network) {
	g := routeGraph(s, net)
	if !g.Connected() {
		logrus.Warnf("topology is not connected: %v", g.Components())
	}
	violations := topology.VerifyReversePaths(s, net.Destinations)
	for _, v := range violations {
		logrus.Warnf("route check: %s", v)
	}
	if len(violations) == 0 {
		logrus.Info("route check: every TRA table follows a reverse shortest path")
	}
}

// routeGraph is the physical topology; the controller only counts once it
// manages at least one switch.
func routeGraph(s *sim.Simulator, net *scenario.Network) *topology.Graph {
	adj := s.Adjacency()
	if len(adj[net.Controller]) == 0 {
		delete(adj, net.Controller)
	}
	return topology.FromAdjacency(adj)
}

func printSummary(w io.Writer, sum *trace.TraceSummary) {
	fmt.Fprintf(w, "events: %d (recv %d, send %d, generate %d), last at %d\n",
		sum.TotalEvents, sum.Receives, sum.Sends, sum.Generations, sum.LastTime)
	types := make([]string, 0, len(sum.PacketTypes))
	for t := range sum.PacketTypes {
		types = append(types, t)
	}
	slices.Sort(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %s: %d\n", t, sum.PacketTypes[t])
	}
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a network simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		opts := runOptions{
			ScenarioPath: scenarioPath,
			InputPath:    inputPath,
			Horizon:      horizon,
			TraceLevel:   traceLevel,
			SelectSDN:    selectSDN,
			Jitter:       jitter,
			Seed:         seed,
			Verify:       verify,
			Summary:      summary,
		}
		if err := runSimulation(opts, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("simulation failed: %v", err)
		}
	},
}

// typesCmd lists every registered variant tag
var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the registered header, payload, packet, node, link and event types",
	Run: func(cmd *cobra.Command, args []string) {
		printTypes(cmd.OutOrStdout(), newDefaultSimulator())
	},
}

func newDefaultSimulator() *sim.Simulator {
	return sim.NewSimulator(sim.DefaultConfig())
}

func printTypes(w io.Writer, s *sim.Simulator) {
	types := s.RegisteredTypes()
	for _, kind := range []string{"header", "payload", "packet", "node", "link", "event"} {
		fmt.Fprintf(w, "%s:\n", kind)
		for _, tag := range types[kind] {
			fmt.Fprintf(w, "  %s\n", tag)
		}
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a YAML scenario file")
	runCmd.Flags().StringVar(&inputPath, "input", "", "Path to a legacy whitespace input file, - for stdin")
	runCmd.Flags().Uint64Var(&horizon, "horizon", 0, "Simulation horizon in ticks (0 = from the scenario)")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "events", "Trace level (none, events)")
	runCmd.Flags().BoolVar(&selectSDN, "select-sdn", false, "Upgrade switches to SDN within the scenario budget")
	runCmd.Flags().Uint64Var(&jitter, "jitter", 0, "Use jitter links with this latency spread in ticks")
	runCmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for jitter link latencies (0 = scenario or default seed)")
	runCmd.Flags().BoolVar(&verify, "verify", false, "Check routing tables against shortest paths after the run")
	runCmd.Flags().BoolVar(&summary, "summary", false, "Print a trace summary to stderr")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(typesCmd)
}
