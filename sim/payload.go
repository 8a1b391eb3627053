package sim

import "strconv"

// PayloadType tags a payload variant.
type PayloadType string

const (
	TRADataPayloadType PayloadType = "TRA_data_payload"
	TRACtrlPayloadType PayloadType = "TRA_ctrl_payload"
	SDNCtrlPayloadType PayloadType = "SDN_ctrl_payload"
)

// Payload is the protocol data of a packet.
type Payload interface {
	Type() PayloadType
	Message() string
	// Clone returns a deep copy that shares nothing with the receiver.
	Clone() Payload
}

// TRADataPayload carries a data message toward a destination.
type TRADataPayload struct {
	Msg string
}

func (p *TRADataPayload) Type() PayloadType { return TRADataPayloadType }
func (p *TRADataPayload) Message() string   { return p.Msg }
func (p *TRADataPayload) Clone() Payload {
	c := *p
	return &c
}

// TRACtrlPayload is a distance-vector advertisement; Counter grows by one
// on every re-flood.
type TRACtrlPayload struct {
	Msg     string
	Counter uint32
}

func (p *TRACtrlPayload) Type() PayloadType { return TRACtrlPayloadType }
func (p *TRACtrlPayload) Message() string   { return p.Msg }
func (p *TRACtrlPayload) Clone() Payload {
	c := *p
	return &c
}

// Increase bumps the hop counter.
func (p *TRACtrlPayload) Increase() {
	p.Counter++
}

// SDNCtrlPayload is a forwarding rule pushed by a controller: traffic
// matching MatID goes to ActID with fraction Per in [0,1].
type SDNCtrlPayload struct {
	Msg   string
	MatID NodeID
	ActID NodeID
	Per   float64
}

func (p *SDNCtrlPayload) Type() PayloadType { return SDNCtrlPayloadType }
func (p *SDNCtrlPayload) Message() string   { return p.Msg }
func (p *SDNCtrlPayload) Clone() Payload {
	c := *p
	return &c
}

// additionalInfo is the trailing trace column for a payload.
func additionalInfo(p Payload) string {
	if c, ok := p.(*TRACtrlPayload); ok {
		return " counter " + strconv.FormatUint(uint64(c.Counter), 10)
	}
	return ""
}
