package scenario

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/trasdn/netsim/sim"
)

// Network describes what Build put into a simulator.
type Network struct {
	Switches     []sim.NodeID // ascending
	SDN          []sim.NodeID // ascending
	Controller   sim.NodeID
	Destinations []sim.NodeID // in scenario order
}

// IsSDN reports whether id was built as an SDN switch.
func (n *Network) IsSDN(id sim.NodeID) bool {
	_, found := slices.BinarySearch(n.SDN, id)
	return found
}

// SimConfig applies the scenario's link settings to cfg.
func (s *Scenario) SimConfig(cfg sim.Config) sim.Config {
	if s.Jitter != nil {
		cfg.JitterBase = sim.Time(s.Jitter.Base)
		cfg.JitterSpread = sim.Time(s.Jitter.Spread)
		if s.Jitter.Seed != 0 {
			cfg.Seed = s.Jitter.Seed
		}
	}
	return cfg
}

// sdnNodes returns the switches to build as SDN_switch.
func (s *Scenario) sdnNodes() ([]uint32, error) {
	if !s.SelectSDN {
		var ids []uint32
		for _, n := range s.Nodes {
			if n.Type == sdnSwitch {
				ids = append(ids, n.ID)
			}
		}
		slices.Sort(ids)
		return ids, nil
	}
	costs := make([]int, len(s.Nodes))
	filled := make([]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if int(n.ID) >= len(costs) || filled[n.ID] {
			return nil, fmt.Errorf("select_sdn needs node ids 0..%d, got %d", len(costs)-1, n.ID)
		}
		costs[n.ID] = n.Cost
		filled[n.ID] = true
	}
	dsts := make([]uint32, len(s.Destinations))
	for i, d := range s.Destinations {
		dsts[i] = d.ID
	}
	return SelectSDNNodes(costs, s.Budget, dsts), nil
}

// Build validates the scenario and populates simulator: switches, a
// controller with the next free id linked to every SDN switch, symmetric
// links, an advertisement per TRA destination, data packets and SDN rules.
func (s *Scenario) Build(simulator *sim.Simulator) (*Network, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	sdn, err := s.sdnNodes()
	if err != nil {
		return nil, err
	}
	net := &Network{}
	for _, id := range sdn {
		net.SDN = append(net.SDN, sim.NodeID(id))
	}

	var maxID sim.NodeID
	for _, n := range s.Nodes {
		id := sim.NodeID(n.ID)
		tag := sim.TRASwitchType
		if net.IsSDN(id) {
			tag = sim.SDNSwitchType
		}
		if _, err := simulator.CreateNode(tag, id); err != nil {
			return nil, err
		}
		net.Switches = append(net.Switches, id)
		maxID = max(maxID, id)
	}
	slices.Sort(net.Switches)

	net.Controller = maxID + 1
	if _, err := simulator.CreateNode(sim.SDNControllerType, net.Controller); err != nil {
		return nil, err
	}

	linkType := sim.LinkType(s.linkType())
	connect := func(a, b sim.NodeID) error {
		if err := simulator.AddPhyNeighbor(a, b, linkType); err != nil {
			return err
		}
		return simulator.AddPhyNeighbor(b, a, linkType)
	}
	for _, l := range s.Links {
		if err := connect(sim.NodeID(l.A), sim.NodeID(l.B)); err != nil {
			return nil, fmt.Errorf("link %d: %w", l.ID, err)
		}
	}
	for _, id := range net.SDN {
		if err := connect(net.Controller, id); err != nil {
			return nil, fmt.Errorf("controller link to %d: %w", id, err)
		}
	}

	for _, d := range s.Destinations {
		id := sim.NodeID(d.ID)
		net.Destinations = append(net.Destinations, id)
		if net.IsSDN(id) {
			logrus.Debugf("destination %d is an SDN switch, no advertisement", id)
			continue
		}
		if err := simulator.TRACtrlPacketEvent(id, sim.Time(d.BroadcastAt), ""); err != nil {
			return nil, err
		}
	}
	for _, d := range s.Data {
		dst := sim.NodeID(d.Dst)
		if d.Broadcast {
			dst = sim.Broadcast
		}
		if err := simulator.DataPacketEvent(sim.NodeID(d.Src), dst, sim.Time(d.At), d.Msg); err != nil {
			return nil, err
		}
	}
	for _, r := range s.Rules {
		at := r.At
		if at == 0 {
			at = s.SDNControlTime
		}
		err := simulator.SDNCtrlPacketEvent(net.Controller, sim.NodeID(r.Switch), sim.NodeID(r.Match),
			sim.NodeID(r.Action), r.Percent, sim.Time(at), r.Msg)
		if err != nil {
			return nil, err
		}
	}
	logrus.Infof("built %d switches (%d SDN), controller %d, %d links",
		len(net.Switches), len(net.SDN), net.Controller, simulator.LinkNum())
	return net, nil
}
