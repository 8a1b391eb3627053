package sim

import "github.com/sirupsen/logrus"

// SDNSwitch is a switch under controller management. It does not act on
// control traffic yet, so its table stays empty.
type SDNSwitch struct {
	BaseNode
	routingTable map[NodeID][]WeightedHop
}

// NewSDNSwitch returns a detached SDN switch.
func NewSDNSwitch(id NodeID) Node {
	return &SDNSwitch{
		BaseNode:     NewBaseNode(id),
		routingTable: make(map[NodeID][]WeightedHop),
	}
}

func (s *SDNSwitch) Type() NodeType { return SDNSwitchType }

func (s *SDNSwitch) RecvHandler(*Packet) {}

// RoutingTable returns a copy of the origin -> weighted hops table.
func (s *SDNSwitch) RoutingTable() map[NodeID][]WeightedHop {
	return copyWeighted(s.routingTable)
}

// SDNController learns reverse paths from both control packet types and
// re-floods them unchanged apart from the addressing.
type SDNController struct {
	BaseNode
	routingTable map[NodeID][]WeightedHop
	counterCheck map[NodeID]uint32
}

// NewSDNController returns a detached controller.
func NewSDNController(id NodeID) Node {
	return &SDNController{
		BaseNode:     NewBaseNode(id),
		routingTable: make(map[NodeID][]WeightedHop),
		counterCheck: make(map[NodeID]uint32),
	}
}

func (c *SDNController) Type() NodeType { return SDNControllerType }

func (c *SDNController) RecvHandler(p *Packet) {
	if p == nil {
		return
	}
	if p.Type() != TRACtrlPacket && p.Type() != SDNCtrlPacket {
		return
	}
	metric, ok := advertMetric(p)
	if !ok {
		logrus.Warnf("SDN controller %d: %s without a control payload", c.id, p.Type())
		return
	}
	src, pre := p.Header.SrcID, p.Header.PreID
	var hop NodeID
	hops, seen := c.routingTable[src]
	if seen && len(hops) > 0 {
		hop = hops[0].Next
	}
	if !admitAdvert(seen, c.counterCheck[src], hop, metric, pre) {
		return
	}
	c.routingTable[src] = []WeightedHop{{Next: pre, Weight: 1}}
	c.counterCheck[src] = metric
	reflood(&c.BaseNode, p)
}

// RoutingTable returns a copy of the origin -> weighted hops table.
func (c *SDNController) RoutingTable() map[NodeID][]WeightedHop {
	return copyWeighted(c.routingTable)
}

func copyWeighted(in map[NodeID][]WeightedHop) map[NodeID][]WeightedHop {
	out := make(map[NodeID][]WeightedHop, len(in))
	for k, v := range in {
		out[k] = append([]WeightedHop(nil), v...)
	}
	return out
}
