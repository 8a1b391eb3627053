package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/trasdn/netsim/sim/trace"
)

// EventType tags an event variant.
type EventType string

const (
	RecvEventType       EventType = "recv_event"
	SendEventType       EventType = "send_event"
	TRADataGenEventType EventType = "TRA_data_pkt_gen_event"
	TRACtrlGenEventType EventType = "TRA_ctrl_pkt_gen_event"
	SDNCtrlGenEventType EventType = "SDN_ctrl_pkt_gen_event"
)

// Event defines the interface for all simulation events.
// Each event has a Timestamp (in ticks) and a Trigger method that advances
// simulation state when invoked.
type Event interface {
	Timestamp() Time
	Type() EventType
	// Priority breaks ties between events at the same time; lower first.
	Priority() uint32
	Trigger(*Simulator)
	// Record describes the event for the trace, as of time now.
	Record(now Time) trace.Record
}

// EventPrototype builds an event of one variant from its construction data.
type EventPrototype func(t Time, data any) (Event, error)

// packetCarrier is implemented by events that own a packet until triggered.
type packetCarrier interface {
	carried() *Packet
}

// RecvData is the construction data of a recv_event.
type RecvData struct {
	Sender   NodeID
	Receiver NodeID
	Packet   *Packet
}

// SendData is the construction data of a send_event.
type SendData struct {
	Sender   NodeID
	Receiver NodeID // Broadcast for every neighbor
	Packet   *Packet
}

// TRADataGenData is the construction data of a TRA_data_pkt_gen_event.
type TRADataGenData struct {
	Src, Dst NodeID
	Msg      string
}

// TRACtrlGenData is the construction data of a TRA_ctrl_pkt_gen_event.
type TRACtrlGenData struct {
	Src, Dst NodeID
	Msg      string
}

// SDNCtrlGenData is the construction data of a SDN_ctrl_pkt_gen_event.
type SDNCtrlGenData struct {
	Src, Dst     NodeID
	MatID, ActID NodeID
	Per          float64
	Msg          string
}

func invalidData(tag EventType, data any) error {
	err := fmt.Errorf("%s cannot be built from %T: %w", tag, data, ErrInvalidEventData)
	logrus.Warn(err)
	return err
}

// packetRecord fills the columns shared by recv and send lines.
func packetRecord(now Time, kind trace.RecordKind, node NodeID, p *Packet) trace.Record {
	r := trace.Record{Time: uint64(now), Kind: kind, Node: uint32(node)}
	if p == nil || p.Released() {
		return r
	}
	r.PacketID = uint32(p.ID())
	r.Src = uint32(p.Header.SrcID)
	r.Dst = uint32(p.Header.DstID)
	r.Pre = uint32(p.Header.PreID)
	r.Nex = uint32(p.Header.NexID)
	r.PacketType = string(p.Type())
	r.Extra = additionalInfo(p.Payload)
	return r
}

// RecvEvent delivers a packet to its receiver at arrival time.
type RecvEvent struct {
	time     Time
	sender   NodeID
	receiver NodeID
	pkt      *Packet
	priority uint32
}

func newRecvEvent(t Time, data any) (Event, error) {
	d, ok := data.(RecvData)
	if !ok || d.Packet == nil {
		return nil, invalidData(RecvEventType, data)
	}
	return &RecvEvent{
		time:     t,
		sender:   d.Sender,
		receiver: d.Receiver,
		pkt:      d.Packet,
		priority: eventPriority(uint64(t), uint64(d.Sender), uint64(d.Receiver), uint64(d.Packet.ID())),
	}, nil
}

func (e *RecvEvent) Timestamp() Time  { return e.time }
func (e *RecvEvent) Type() EventType  { return RecvEventType }
func (e *RecvEvent) Priority() uint32 { return e.priority }
func (e *RecvEvent) carried() *Packet { return e.pkt }

func (e *RecvEvent) Record(now Time) trace.Record {
	return packetRecord(now, trace.KindRecv, e.receiver, e.pkt)
}

// Trigger hands the packet to the receiver, which releases it.
func (e *RecvEvent) Trigger(sim *Simulator) {
	n := sim.Node(e.receiver)
	if n == nil {
		logrus.Warnf("recv_event: receiver %d: %v", e.receiver, ErrDanglingReference)
		sim.packets.Release(e.pkt)
		return
	}
	recv(n, e.pkt)
}

// SendEvent puts a packet on the sender's outgoing links.
type SendEvent struct {
	time     Time
	sender   NodeID
	receiver NodeID
	pkt      *Packet
	priority uint32
}

func newSendEvent(t Time, data any) (Event, error) {
	d, ok := data.(SendData)
	if !ok || d.Packet == nil {
		return nil, invalidData(SendEventType, data)
	}
	return &SendEvent{
		time:     t,
		sender:   d.Sender,
		receiver: d.Receiver,
		pkt:      d.Packet,
		priority: eventPriority(uint64(t), uint64(d.Sender), uint64(d.Receiver), uint64(d.Packet.ID())),
	}, nil
}

func (e *SendEvent) Timestamp() Time  { return e.time }
func (e *SendEvent) Type() EventType  { return SendEventType }
func (e *SendEvent) Priority() uint32 { return e.priority }
func (e *SendEvent) carried() *Packet { return e.pkt }

func (e *SendEvent) Record(now Time) trace.Record {
	return packetRecord(now, trace.KindSend, e.sender, e.pkt)
}

// Trigger transmits the packet from the sender, which releases it.
func (e *SendEvent) Trigger(sim *Simulator) {
	n := sim.Node(e.sender)
	if n == nil {
		logrus.Warnf("send_event: sender %d: %v", e.sender, ErrDanglingReference)
		sim.packets.Release(e.pkt)
		return
	}
	n.Base().send(e.pkt)
}

// TRADataGenEvent creates a data packet at its source.
type TRADataGenEvent struct {
	time     Time
	data     TRADataGenData
	priority uint32
}

func newTRADataGenEvent(t Time, data any) (Event, error) {
	d, ok := data.(TRADataGenData)
	if !ok {
		return nil, invalidData(TRADataGenEventType, data)
	}
	return &TRADataGenEvent{
		time:     t,
		data:     d,
		priority: eventPriority(uint64(t), uint64(d.Src), uint64(d.Dst)),
	}, nil
}

func (e *TRADataGenEvent) Timestamp() Time  { return e.time }
func (e *TRADataGenEvent) Type() EventType  { return TRADataGenEventType }
func (e *TRADataGenEvent) Priority() uint32 { return e.priority }

func (e *TRADataGenEvent) Record(now Time) trace.Record {
	return trace.Record{
		Time:       uint64(now),
		Kind:       trace.KindGenerate,
		Src:        uint32(e.data.Src),
		Dst:        uint32(e.data.Dst),
		PacketType: string(TRADataPacket),
	}
}

func (e *TRADataGenEvent) Trigger(sim *Simulator) {
	d := e.data
	if sim.Node(d.Src) == nil || (d.Dst != Broadcast && sim.Node(d.Dst) == nil) {
		logrus.Warnf("%s: src %d or dst %d: %v", e.Type(), d.Src, d.Dst, ErrDanglingReference)
		return
	}
	p, err := sim.packets.Generate(TRADataPacket)
	if err != nil {
		return
	}
	p.Header.SrcID, p.Header.DstID = d.Src, d.Dst
	p.Header.PreID, p.Header.NexID = d.Src, d.Src
	if pld, ok := p.Payload.(*TRADataPayload); ok {
		pld.Msg = d.Msg
	}
	sim.injectAtSource(e.time, d.Src, p)
}

// TRACtrlGenEvent creates an advertisement at its origin.
type TRACtrlGenEvent struct {
	time     Time
	data     TRACtrlGenData
	priority uint32
}

func newTRACtrlGenEvent(t Time, data any) (Event, error) {
	d, ok := data.(TRACtrlGenData)
	if !ok {
		return nil, invalidData(TRACtrlGenEventType, data)
	}
	return &TRACtrlGenEvent{
		time:     t,
		data:     d,
		priority: eventPriority(uint64(t), uint64(d.Src), uint64(d.Dst)),
	}, nil
}

func (e *TRACtrlGenEvent) Timestamp() Time  { return e.time }
func (e *TRACtrlGenEvent) Type() EventType  { return TRACtrlGenEventType }
func (e *TRACtrlGenEvent) Priority() uint32 { return e.priority }

func (e *TRACtrlGenEvent) Record(now Time) trace.Record {
	return trace.Record{
		Time:       uint64(now),
		Kind:       trace.KindGenerate,
		Src:        uint32(e.data.Src),
		Dst:        uint32(e.data.Dst),
		PacketType: string(TRACtrlPacket),
	}
}

func (e *TRACtrlGenEvent) Trigger(sim *Simulator) {
	d := e.data
	p, err := sim.packets.Generate(TRACtrlPacket)
	if err != nil {
		return
	}
	p.Header.SrcID, p.Header.DstID = d.Src, d.Dst
	p.Header.PreID, p.Header.NexID = d.Src, d.Src
	if pld, ok := p.Payload.(*TRACtrlPayload); ok {
		pld.Msg = d.Msg
	}
	sim.injectAtSource(e.time, d.Src, p)
}

// SDNCtrlGenEvent creates a controller rule for a destination switch. The
// packet starts at the controller.
type SDNCtrlGenEvent struct {
	time     Time
	data     SDNCtrlGenData
	priority uint32
}

func newSDNCtrlGenEvent(t Time, data any) (Event, error) {
	d, ok := data.(SDNCtrlGenData)
	if !ok {
		return nil, invalidData(SDNCtrlGenEventType, data)
	}
	return &SDNCtrlGenEvent{
		time:     t,
		data:     d,
		priority: eventPriority(uint64(t), uint64(d.Src), uint64(d.Dst), uint64(d.MatID), uint64(d.ActID)),
	}, nil
}

func (e *SDNCtrlGenEvent) Timestamp() Time  { return e.time }
func (e *SDNCtrlGenEvent) Type() EventType  { return SDNCtrlGenEventType }
func (e *SDNCtrlGenEvent) Priority() uint32 { return e.priority }

func (e *SDNCtrlGenEvent) Record(now Time) trace.Record {
	return trace.Record{
		Time:       uint64(now),
		Kind:       trace.KindSDNGenerate,
		Src:        uint32(e.data.Src),
		Dst:        uint32(e.data.Dst),
		Percent:    e.data.Per,
		MatID:      uint32(e.data.MatID),
		ActID:      uint32(e.data.ActID),
		PacketType: string(SDNCtrlPacket),
	}
}

func (e *SDNCtrlGenEvent) Trigger(sim *Simulator) {
	d := e.data
	if d.Dst == Broadcast || sim.Node(d.Dst) == nil {
		logrus.Warnf("%s: dst %d: %v", e.Type(), d.Dst, ErrDanglingReference)
		return
	}
	p, err := sim.packets.Generate(SDNCtrlPacket)
	if err != nil {
		return
	}
	p.Header.SrcID, p.Header.DstID = d.Src, d.Dst
	p.Header.PreID, p.Header.NexID = d.Src, d.Src
	if pld, ok := p.Payload.(*SDNCtrlPayload); ok {
		pld.Msg, pld.MatID, pld.ActID, pld.Per = d.Msg, d.MatID, d.ActID, d.Per
	}
	sim.injectAtSource(e.time, d.Src, p)
}
