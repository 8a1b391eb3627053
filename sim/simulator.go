// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/trasdn/netsim/sim/registry"
	"github.com/trasdn/netsim/sim/trace"
)

// Config holds the knobs of a simulator.
type Config struct {
	Trace trace.TraceConfig
	// JitterBase and JitterSpread parameterize jitter_link latency.
	JitterBase   Time
	JitterSpread Time
	// Seed fixes the jitter streams; equal seeds give equal traces.
	Seed uint64
}

// DefaultConfig returns a config with tracing off and jitter links behaving
// like simple links.
func DefaultConfig() Config {
	return Config{
		Trace:      trace.TraceConfig{Level: trace.TraceLevelNone},
		JitterBase: OneHopDelay,
		Seed:       DefaultSeed,
	}
}

// Simulator is the core object that holds simulation time, the topology,
// the packet factory and the event loop. Independent simulators share no
// state.
// A Simulator is not safe for concurrent use.
type Simulator struct {
	clock Time
	queue *EventQueue

	nodes map[NodeID]Node
	links map[linkKey]Link

	nodeTypes  *registry.Registry[NodePrototype]
	linkTypes  *registry.Registry[LinkPrototype]
	eventTypes *registry.Registry[EventPrototype]
	packets    *PacketFactory

	// Trace is nil when tracing is off.
	Trace *trace.SimulationTrace
}

// NewSimulator returns a simulator with every built-in variant registered.
func NewSimulator(cfg Config) *Simulator {
	sim := &Simulator{
		queue:      NewEventQueue(),
		nodes:      make(map[NodeID]Node),
		links:      make(map[linkKey]Link),
		nodeTypes:  registry.New[NodePrototype]("node"),
		linkTypes:  registry.New[LinkPrototype]("link"),
		eventTypes: registry.New[EventPrototype]("event"),
		packets:    NewPacketFactory(),
	}
	if cfg.Trace.Level != "" && cfg.Trace.Level != trace.TraceLevelNone {
		sim.Trace = trace.NewSimulationTrace(cfg.Trace)
	}

	sim.RegisterNode(TRASwitchType, NewTRASwitch)
	sim.RegisterNode(SDNSwitchType, NewSDNSwitch)
	sim.RegisterNode(SDNControllerType, NewSDNController)

	sim.RegisterLink(SimpleLink, newSimpleLink)
	sim.RegisterLink(JitterLink, jitterLinkPrototype(cfg.JitterBase, cfg.JitterSpread, cfg.Seed))

	sim.RegisterEvent(RecvEventType, newRecvEvent)
	sim.RegisterEvent(SendEventType, newSendEvent)
	sim.RegisterEvent(TRADataGenEventType, newTRADataGenEvent)
	sim.RegisterEvent(TRACtrlGenEventType, newTRACtrlGenEvent)
	sim.RegisterEvent(SDNCtrlGenEventType, newSDNCtrlGenEvent)
	return sim
}

// Clock returns the current simulation time.
func (sim *Simulator) Clock() Time { return sim.clock }

// Packets returns the packet factory.
func (sim *Simulator) Packets() *PacketFactory { return sim.packets }

func (sim *Simulator) RegisterNode(tag NodeType, proto NodePrototype) {
	sim.nodeTypes.Register(string(tag), proto)
}

func (sim *Simulator) RegisterLink(tag LinkType, proto LinkPrototype) {
	sim.linkTypes.Register(string(tag), proto)
}

func (sim *Simulator) RegisterEvent(tag EventType, proto EventPrototype) {
	sim.eventTypes.Register(string(tag), proto)
}

// RegisteredTypes lists the tags of every registry, keyed by registry kind.
func (sim *Simulator) RegisteredTypes() map[string][]string {
	return map[string][]string{
		"header":  sim.packets.HeaderTags(),
		"payload": sim.packets.PayloadTags(),
		"packet":  sim.packets.PacketTags(),
		"node":    sim.nodeTypes.Tags(),
		"link":    sim.linkTypes.Tags(),
		"event":   sim.eventTypes.Tags(),
	}
}

// CreateNode builds a node of the given type and adds it to the topology.
func (sim *Simulator) CreateNode(tag NodeType, id NodeID) (Node, error) {
	if id == Broadcast {
		err := fmt.Errorf("creating %s: %w", tag, ErrReservedID)
		logrus.Warn(err)
		return nil, err
	}
	if _, ok := sim.nodes[id]; ok {
		err := fmt.Errorf("creating %s %d: %w", tag, id, ErrDuplicateID)
		logrus.Warn(err)
		return nil, err
	}
	proto, err := sim.nodeTypes.Lookup(string(tag))
	if err != nil {
		logrus.Warn(err)
		return nil, err
	}
	n := proto(id)
	if n == nil || n.Type() != tag || n.ID() != id {
		err := fmt.Errorf("creating %s %d: %w", tag, id, ErrPrototypeMismatch)
		logrus.Warn(err)
		return nil, err
	}
	n.Base().sim = sim
	sim.nodes[id] = n
	return n, nil
}

// Node returns the node with the given id, or nil.
func (sim *Simulator) Node(id NodeID) Node {
	return sim.nodes[id]
}

// RemoveNode erases id from the node table. Links and neighbor entries that
// point at it are left in place; traffic still addressed to it is dropped
// with a dangling-reference warning.
func (sim *Simulator) RemoveNode(id NodeID) bool {
	if _, ok := sim.nodes[id]; !ok {
		return false
	}
	delete(sim.nodes, id)
	return true
}

// NodeNum returns the number of nodes.
func (sim *Simulator) NodeNum() int { return len(sim.nodes) }

// NodeIDs returns every node id in ascending order.
func (sim *Simulator) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(sim.nodes))
	for id := range sim.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// CreateLink builds the directed link from -> to.
func (sim *Simulator) CreateLink(tag LinkType, from, to NodeID) (Link, error) {
	if from == Broadcast || to == Broadcast {
		err := fmt.Errorf("creating %s %d->%d: %w", tag, from, to, ErrReservedID)
		logrus.Warn(err)
		return nil, err
	}
	key := linkKey{from, to}
	if _, ok := sim.links[key]; ok {
		err := fmt.Errorf("creating %s %d->%d: %w", tag, from, to, ErrDuplicateID)
		logrus.Warn(err)
		return nil, err
	}
	proto, err := sim.linkTypes.Lookup(string(tag))
	if err != nil {
		logrus.Warn(err)
		return nil, err
	}
	l := proto(from, to)
	if l == nil || l.Type() != tag || l.From() != from || l.To() != to {
		err := fmt.Errorf("creating %s %d->%d: %w", tag, from, to, ErrPrototypeMismatch)
		logrus.Warn(err)
		return nil, err
	}
	sim.links[key] = l
	return l, nil
}

// LinkBetween returns the link from -> to, or nil.
func (sim *Simulator) LinkBetween(from, to NodeID) Link {
	return sim.links[linkKey{from, to}]
}

// DeleteLink removes the link from -> to.
func (sim *Simulator) DeleteLink(from, to NodeID) bool {
	key := linkKey{from, to}
	if _, ok := sim.links[key]; !ok {
		return false
	}
	delete(sim.links, key)
	return true
}

// LinkNum returns the number of links.
func (sim *Simulator) LinkNum() int { return len(sim.links) }

// AddPhyNeighbor makes other a one-way neighbor of self and creates the link
// self -> other. Self-loops, unknown neighbors and existing relations are
// ignored. An empty tag means simple_link.
func (sim *Simulator) AddPhyNeighbor(self, other NodeID, tag LinkType) error {
	n := sim.nodes[self]
	if n == nil {
		err := fmt.Errorf("adding neighbor %d to %d: %w", other, self, ErrDanglingReference)
		logrus.Warn(err)
		return err
	}
	if self == other || sim.nodes[other] == nil || n.Base().HasNeighbor(other) {
		return nil
	}
	if tag == "" {
		tag = SimpleLink
	}
	if sim.LinkBetween(self, other) == nil {
		if _, err := sim.CreateLink(tag, self, other); err != nil {
			return err
		}
	}
	n.Base().addNeighbor(other)
	return nil
}

// DelPhyNeighbor removes other from self's neighbor set. The link stays.
func (sim *Simulator) DelPhyNeighbor(self, other NodeID) bool {
	n := sim.nodes[self]
	if n == nil {
		return false
	}
	return n.Base().delNeighbor(other)
}

// Adjacency returns the sorted neighbor list of every node.
func (sim *Simulator) Adjacency() map[NodeID][]NodeID {
	adj := make(map[NodeID][]NodeID, len(sim.nodes))
	for id, n := range sim.nodes {
		adj[id] = n.Neighbors()
	}
	return adj
}

// InjectEvent builds an event through the event registry and enqueues it.
func (sim *Simulator) InjectEvent(tag EventType, t Time, data any) (Event, error) {
	proto, err := sim.eventTypes.Lookup(string(tag))
	if err != nil {
		logrus.Warn(err)
		return nil, err
	}
	ev, err := proto(t, data)
	if err != nil {
		return nil, err
	}
	sim.Schedule(ev)
	return ev, nil
}

// Schedule pushes an already built event into the queue.
func (sim *Simulator) Schedule(ev Event) {
	sim.queue.Schedule(ev)
}

// injectAtSource starts a freshly generated packet's journey at its source.
func (sim *Simulator) injectAtSource(t Time, src NodeID, p *Packet) {
	if _, err := sim.InjectEvent(RecvEventType, t, RecvData{Sender: src, Receiver: src, Packet: p}); err != nil {
		sim.packets.Release(p)
	}
}

// Pending returns the number of queued events.
func (sim *Simulator) Pending() int { return sim.queue.Len() }

// Run triggers events in order until the queue is empty or the next event
// lies beyond end. Events later than end stay queued. Finding an event
// earlier than the clock aborts the run with ErrSchedulingInvariant.
func (sim *Simulator) Run(end Time) error {
	for sim.queue.Len() > 0 {
		if sim.queue.Peek().Timestamp() > end {
			break
		}
		ev := sim.queue.PopNext()
		if ev.Timestamp() < sim.clock {
			err := fmt.Errorf("clock %d, %s at %d: %w", sim.clock, ev.Type(), ev.Timestamp(), ErrSchedulingInvariant)
			logrus.Error(err)
			discard(sim, ev)
			return err
		}
		sim.clock = ev.Timestamp()
		logrus.Debugf("[tick %07d] Executing %s", sim.clock, ev.Type())
		if sim.Trace.Enabled() {
			if err := sim.Trace.Record(ev.Record(sim.clock)); err != nil {
				logrus.Warnf("writing trace: %v", err)
			}
		}
		ev.Trigger(sim)
	}
	logrus.Debugf("[tick %07d] Simulation paused, %d events pending", sim.clock, sim.queue.Len())
	return nil
}

// FlushEvents drops every queued event, releasing the packets they carry,
// and returns how many were dropped.
func (sim *Simulator) FlushEvents() int {
	n := 0
	for sim.queue.Len() > 0 {
		ev := sim.queue.PopNext()
		logrus.Debugf("flushing %s at %d", ev.Type(), ev.Timestamp())
		discard(sim, ev)
		n++
	}
	return n
}

func discard(sim *Simulator, ev Event) {
	if c, ok := ev.(packetCarrier); ok {
		sim.packets.Release(c.carried())
	}
}

// DataPacketEvent schedules a TRA data packet from src to dst, or to every
// node when dst is Broadcast.
func (sim *Simulator) DataPacketEvent(src, dst NodeID, t Time, msg string) error {
	if sim.nodes[src] == nil || (dst != Broadcast && sim.nodes[dst] == nil) {
		err := fmt.Errorf("data packet %d->%d: %w", src, dst, ErrDanglingReference)
		logrus.Warn(err)
		return err
	}
	_, err := sim.InjectEvent(TRADataGenEventType, t, TRADataGenData{Src: src, Dst: dst, Msg: msg})
	return err
}

// TRACtrlPacketEvent schedules an advertisement flooded from src.
func (sim *Simulator) TRACtrlPacketEvent(src NodeID, t Time, msg string) error {
	if sim.nodes[src] == nil {
		err := fmt.Errorf("TRA control packet from %d: %w", src, ErrDanglingReference)
		logrus.Warn(err)
		return err
	}
	_, err := sim.InjectEvent(TRACtrlGenEventType, t, TRACtrlGenData{Src: src, Dst: Broadcast, Msg: msg})
	return err
}

// SDNCtrlPacketEvent schedules a rule from controller con for switch id:
// traffic matching mat goes to act with share per.
func (sim *Simulator) SDNCtrlPacketEvent(con, id, mat, act NodeID, per float64, t Time, msg string) error {
	if id == Broadcast || sim.nodes[id] == nil {
		err := fmt.Errorf("SDN control packet for %d: %w", id, ErrDanglingReference)
		logrus.Warn(err)
		return err
	}
	_, err := sim.InjectEvent(SDNCtrlGenEventType, t, SDNCtrlGenData{
		Src: con, Dst: id, MatID: mat, ActID: act, Per: per, Msg: msg,
	})
	return err
}
