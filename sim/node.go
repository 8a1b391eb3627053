package sim

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// NodeType tags a node variant.
type NodeType string

const (
	TRASwitchType     NodeType = "TRA_switch"
	SDNSwitchType     NodeType = "SDN_switch"
	SDNControllerType NodeType = "SDN_controller"
)

// Node is a network element. Concrete nodes embed BaseNode and supply the
// protocol behaviour in RecvHandler.
type Node interface {
	ID() NodeID
	Type() NodeType
	// Neighbors returns the physical neighbors in ascending id order.
	Neighbors() []NodeID
	// RecvHandler processes p. The caller keeps ownership of p and releases
	// it afterwards; handlers hand copies onward via SendHandler.
	RecvHandler(p *Packet)
	Base() *BaseNode
}

// NodePrototype builds a node with the given id.
type NodePrototype func(id NodeID) Node

// BaseNode holds what every node shares: its id, its one-way neighbor set and
// the simulator it lives in.
type BaseNode struct {
	id        NodeID
	neighbors map[NodeID]bool
	sim       *Simulator
}

// NewBaseNode returns a detached base for a node with the given id. The
// simulator attaches it on CreateNode.
func NewBaseNode(id NodeID) BaseNode {
	return BaseNode{id: id, neighbors: make(map[NodeID]bool)}
}

func (n *BaseNode) ID() NodeID      { return n.id }
func (n *BaseNode) Base() *BaseNode { return n }

// Simulator returns the simulator the node was created in.
func (n *BaseNode) Simulator() *Simulator { return n.sim }

func (n *BaseNode) Neighbors() []NodeID {
	ids := make([]NodeID, 0, len(n.neighbors))
	for id := range n.neighbors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// HasNeighbor reports whether id is a physical neighbor.
func (n *BaseNode) HasNeighbor(id NodeID) bool {
	return n.neighbors[id]
}

func (n *BaseNode) addNeighbor(id NodeID) { n.neighbors[id] = true }

func (n *BaseNode) delNeighbor(id NodeID) bool {
	if !n.neighbors[id] {
		return false
	}
	delete(n.neighbors, id)
	return true
}

// SendHandler hands a copy of p to the send machinery. A send_event from
// p's PreID to its NexID is enqueued at the current time; p itself stays
// with the caller.
func (n *BaseNode) SendHandler(p *Packet) {
	if n.sim == nil {
		logrus.Warnf("node %d: send on a detached node", n.id)
		return
	}
	replica, err := n.sim.packets.Replicate(p)
	if err != nil {
		return
	}
	data := SendData{Sender: replica.Header.PreID, Receiver: replica.Header.NexID, Packet: replica}
	if _, err := n.sim.InjectEvent(SendEventType, n.sim.clock, data); err != nil {
		n.sim.packets.Release(replica)
	}
}

// send puts p on every matching outgoing link, one replica per neighbor, and
// then releases p.
func (n *BaseNode) send(p *Packet) {
	defer n.sim.packets.Release(p)
	if p.Released() {
		logrus.Warnf("node %d: %v", n.id, ErrReleasedPacket)
		return
	}
	nex := p.Header.NexID
	for _, nb := range n.Neighbors() {
		if nex != Broadcast && nex != nb {
			continue
		}
		link := n.sim.LinkBetween(n.id, nb)
		if link == nil {
			logrus.Warnf("node %d: no link to neighbor %d, skipped", n.id, nb)
			continue
		}
		replica, err := n.sim.packets.Replicate(p)
		if err != nil {
			continue
		}
		data := RecvData{Sender: n.id, Receiver: nb, Packet: replica}
		if _, err := n.sim.InjectEvent(RecvEventType, n.sim.clock+link.Latency(), data); err != nil {
			n.sim.packets.Release(replica)
		}
	}
}

// recv runs the node's handler on p and then releases it.
func recv(n Node, p *Packet) {
	sim := n.Base().sim
	defer sim.packets.Release(p)
	if p.Released() {
		logrus.Warnf("node %d: %v", n.ID(), ErrReleasedPacket)
		return
	}
	n.RecvHandler(p)
}
