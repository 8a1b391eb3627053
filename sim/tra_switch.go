package sim

import "github.com/sirupsen/logrus"

// TRASwitch runs the flooding distance-vector protocol. For every
// advertisement origin it remembers the neighbor the best advertisement
// came from; data packets follow those reverse paths.
type TRASwitch struct {
	BaseNode

	routingTable map[NodeID]NodeID
	counterCheck map[NodeID]uint32

	// broadcast data already relayed, by packet id
	flooded   map[PacketID]bool
	delivered []string
}

// NewTRASwitch returns a detached TRA switch.
func NewTRASwitch(id NodeID) Node {
	return &TRASwitch{
		BaseNode:     NewBaseNode(id),
		routingTable: make(map[NodeID]NodeID),
		counterCheck: make(map[NodeID]uint32),
		flooded:      make(map[PacketID]bool),
	}
}

func (s *TRASwitch) Type() NodeType { return TRASwitchType }

func (s *TRASwitch) RecvHandler(p *Packet) {
	if p == nil {
		return
	}
	switch p.Type() {
	case TRACtrlPacket, SDNCtrlPacket:
		s.handleAdvert(p)
	case TRADataPacket:
		s.handleData(p)
	}
}

func (s *TRASwitch) handleAdvert(p *Packet) {
	metric, ok := advertMetric(p)
	if !ok {
		logrus.Warnf("TRA switch %d: %s without a control payload", s.id, p.Type())
		return
	}
	src, pre := p.Header.SrcID, p.Header.PreID
	hop, seen := s.routingTable[src]
	if !admitAdvert(seen, s.counterCheck[src], hop, metric, pre) {
		return
	}
	s.routingTable[src] = pre
	s.counterCheck[src] = metric

	if c, ok := p.Payload.(*TRACtrlPayload); ok {
		c.Increase()
	}
	reflood(&s.BaseNode, p)
}

func (s *TRASwitch) handleData(p *Packet) {
	dst := p.Header.DstID
	switch {
	case dst == s.id:
		s.deliver(p)
	case dst == Broadcast:
		if s.flooded[p.ID()] {
			return
		}
		s.flooded[p.ID()] = true
		s.deliver(p)
		p.Header.PreID = s.id
		p.Header.NexID = Broadcast
		s.SendHandler(p)
	default:
		next, ok := s.routingTable[dst]
		if !ok {
			logrus.Debugf("TRA switch %d: no route to %d, packet %d dropped", s.id, dst, p.ID())
			return
		}
		p.Header.PreID = s.id
		p.Header.NexID = next
		s.SendHandler(p)
	}
}

func (s *TRASwitch) deliver(p *Packet) {
	msg := p.Payload.Message()
	s.delivered = append(s.delivered, msg)
	logrus.Infof("[tick %07d] TRA switch %d delivered packet %d from %d", s.sim.clock, s.id, p.ID(), p.Header.SrcID)
}

// RoutingTable returns a copy of the origin -> next hop table.
func (s *TRASwitch) RoutingTable() map[NodeID]NodeID {
	out := make(map[NodeID]NodeID, len(s.routingTable))
	for k, v := range s.routingTable {
		out[k] = v
	}
	return out
}

// Metric returns the metric stored for origin.
func (s *TRASwitch) Metric(origin NodeID) (uint32, bool) {
	m, ok := s.counterCheck[origin]
	return m, ok
}

// Delivered returns the messages of the data packets addressed to this
// switch, in arrival order.
func (s *TRASwitch) Delivered() []string {
	return append([]string(nil), s.delivered...)
}
