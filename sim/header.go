package sim

// HeaderType tags a header variant.
type HeaderType string

const (
	TRADataHeader HeaderType = "TRA_data_header"
	TRACtrlHeader HeaderType = "TRA_ctrl_header"
	SDNCtrlHeader HeaderType = "SDN_ctrl_header"
)

// Header carries the routing metadata of a packet. The variants share one
// layout and differ only by their tag.
type Header struct {
	kind HeaderType

	SrcID NodeID // origin of the packet or advertisement
	DstID NodeID
	PreID NodeID // previous hop
	NexID NodeID // next hop, Broadcast for every neighbor
}

// newHeader returns a header of the given type with every id unset.
func newHeader(kind HeaderType) *Header {
	return &Header{
		kind:  kind,
		SrcID: Broadcast,
		DstID: Broadcast,
		PreID: Broadcast,
		NexID: Broadcast,
	}
}

// Type returns the header's variant tag.
func (h *Header) Type() HeaderType {
	return h.kind
}

func (h *Header) clone() *Header {
	c := *h
	return &c
}
