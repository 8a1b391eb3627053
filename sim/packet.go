package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/trasdn/netsim/sim/registry"
)

// PacketType tags a packet variant.
type PacketType string

const (
	TRADataPacket PacketType = "TRA_data_packet"
	TRACtrlPacket PacketType = "TRA_ctrl_packet"
	SDNCtrlPacket PacketType = "SDN_ctrl_packet"
)

// Packet owns exactly one header and one payload whose types match the
// packet's own variant.
//
// A packet has a single owner at any time. Handing it to Release, or to an
// event, transfers ownership; the previous holder must not touch it again.
type Packet struct {
	id   PacketID
	kind PacketType

	Header  *Header
	Payload Payload

	released bool
}

// ID returns the packet id. Replicas report the id of their source.
func (p *Packet) ID() PacketID { return p.id }

// Type returns the packet's variant tag.
func (p *Packet) Type() PacketType { return p.kind }

// Released reports whether the packet has been destroyed.
func (p *Packet) Released() bool { return p.released }

// HeaderPrototype manufactures a fresh header.
type HeaderPrototype func() *Header

// PayloadPrototype manufactures a fresh payload.
type PayloadPrototype func() Payload

// PacketLayout is the prototype of a packet variant: the header and payload
// types it is built from.
type PacketLayout struct {
	Header  HeaderType
	Payload PayloadType
}

// PacketFactory builds, replicates and releases packets. It assigns packet
// ids and keeps the live-packet count used for leak detection.
type PacketFactory struct {
	headers  *registry.Registry[HeaderPrototype]
	payloads *registry.Registry[PayloadPrototype]
	layouts  *registry.Registry[PacketLayout]

	nextID PacketID
	live   int
}

// NewPacketFactory returns a factory with the built-in TRA and SDN variants
// registered.
func NewPacketFactory() *PacketFactory {
	f := &PacketFactory{
		headers:  registry.New[HeaderPrototype]("header"),
		payloads: registry.New[PayloadPrototype]("payload"),
		layouts:  registry.New[PacketLayout]("packet"),
	}
	for _, kind := range []HeaderType{TRADataHeader, TRACtrlHeader, SDNCtrlHeader} {
		f.RegisterHeader(kind, func() *Header { return NewHeader(kind) })
	}
	f.RegisterPayload(TRADataPayloadType, func() Payload { return &TRADataPayload{} })
	f.RegisterPayload(TRACtrlPayloadType, func() Payload { return &TRACtrlPayload{} })
	f.RegisterPayload(SDNCtrlPayloadType, func() Payload { return &SDNCtrlPayload{} })

	f.RegisterPacket(TRADataPacket, PacketLayout{Header: TRADataHeader, Payload: TRADataPayloadType})
	f.RegisterPacket(TRACtrlPacket, PacketLayout{Header: TRACtrlHeader, Payload: TRACtrlPayloadType})
	f.RegisterPacket(SDNCtrlPacket, PacketLayout{Header: SDNCtrlHeader, Payload: SDNCtrlPayloadType})
	return f
}

// NewHeader returns a header of the given type with every id set to Broadcast.
func NewHeader(kind HeaderType) *Header {
	return newHeader(kind)
}

func (f *PacketFactory) RegisterHeader(tag HeaderType, proto HeaderPrototype) {
	f.headers.Register(string(tag), proto)
}

func (f *PacketFactory) RegisterPayload(tag PayloadType, proto PayloadPrototype) {
	f.payloads.Register(string(tag), proto)
}

func (f *PacketFactory) RegisterPacket(tag PacketType, layout PacketLayout) {
	f.layouts.Register(string(tag), layout)
}

// GenerateHeader builds a fresh header of the given type.
func (f *PacketFactory) GenerateHeader(tag HeaderType) (*Header, error) {
	proto, err := f.headers.Lookup(string(tag))
	if err != nil {
		logrus.Warn(err)
		return nil, err
	}
	return proto(), nil
}

// GeneratePayload builds a fresh payload of the given type.
func (f *PacketFactory) GeneratePayload(tag PayloadType) (Payload, error) {
	proto, err := f.payloads.Lookup(string(tag))
	if err != nil {
		logrus.Warn(err)
		return nil, err
	}
	return proto(), nil
}

// Generate builds a fresh packet with the next packet id.
func (f *PacketFactory) Generate(tag PacketType) (*Packet, error) {
	layout, err := f.layouts.Lookup(string(tag))
	if err != nil {
		logrus.Warn(err)
		return nil, err
	}
	hdr, err := f.GenerateHeader(layout.Header)
	if err != nil {
		return nil, err
	}
	pld, err := f.GeneratePayload(layout.Payload)
	if err != nil {
		return nil, err
	}
	if err := checkLayout(tag, layout, hdr, pld); err != nil {
		return nil, err
	}
	p := &Packet{id: f.nextID, kind: tag, Header: hdr, Payload: pld}
	f.nextID++
	f.live++
	return p, nil
}

// Replicate deep-copies p. The copy keeps p's id and is released
// independently of p.
func (f *PacketFactory) Replicate(p *Packet) (*Packet, error) {
	if p == nil || p.released {
		err := fmt.Errorf("replicating packet: %w", ErrReleasedPacket)
		logrus.Warn(err)
		return nil, err
	}
	layout, err := f.layouts.Lookup(string(p.kind))
	if err != nil {
		logrus.Warn(err)
		return nil, err
	}
	if err := checkLayout(p.kind, layout, p.Header, p.Payload); err != nil {
		return nil, err
	}
	f.live++
	return &Packet{
		id:      p.id,
		kind:    p.kind,
		Header:  p.Header.clone(),
		Payload: p.Payload.Clone(),
	}, nil
}

// Release destroys p. Releasing nil is a no-op; releasing twice is logged
// and ignored so the live count never goes negative.
func (f *PacketFactory) Release(p *Packet) {
	if p == nil {
		return
	}
	if p.released {
		logrus.Warnf("packet %d released twice", p.id)
		return
	}
	p.released = true
	p.Header = nil
	p.Payload = nil
	f.live--
}

// Live returns the number of packets generated or replicated and not yet
// released.
func (f *PacketFactory) Live() int {
	return f.live
}

// NextID returns the id the next generated packet will get.
func (f *PacketFactory) NextID() PacketID {
	return f.nextID
}

// HeaderTags, PayloadTags and PacketTags list the registered variants.
func (f *PacketFactory) HeaderTags() []string  { return f.headers.Tags() }
func (f *PacketFactory) PayloadTags() []string { return f.payloads.Tags() }
func (f *PacketFactory) PacketTags() []string  { return f.layouts.Tags() }

func checkLayout(tag PacketType, layout PacketLayout, hdr *Header, pld Payload) error {
	if hdr == nil || pld == nil || hdr.Type() != layout.Header || pld.Type() != layout.Payload {
		err := fmt.Errorf("%s must pair %s with %s: %w", tag, layout.Header, layout.Payload, ErrPacketTypeMismatch)
		logrus.Warn(err)
		return err
	}
	return nil
}
