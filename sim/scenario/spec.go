// Package scenario loads network scenarios and turns them into a populated
// simulator: nodes, links, advertisements, data and SDN rules.
package scenario

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is the top-level scenario configuration.
// Loaded from YAML via LoadScenario(path) or from the legacy whitespace
// format via ParseText.
type Scenario struct {
	Horizon        uint64 `yaml:"horizon"`
	SDNControlTime uint64 `yaml:"sdn_control_time,omitempty"`
	// Budget caps the upgrade cost spent by SelectSDNNodes.
	Budget    int  `yaml:"budget,omitempty"`
	SelectSDN bool `yaml:"select_sdn,omitempty"`
	// LinkType defaults to simple_link.
	LinkType string      `yaml:"link_type,omitempty"`
	Jitter   *JitterSpec `yaml:"jitter,omitempty"`

	Nodes        []NodeSpec        `yaml:"nodes"`
	Links        []LinkSpec        `yaml:"links"`
	Destinations []DestinationSpec `yaml:"destinations"`
	Data         []DataSpec        `yaml:"data,omitempty"`
	Rules        []RuleSpec        `yaml:"sdn_rules,omitempty"`
	Flows        []FlowSpec        `yaml:"flows,omitempty"` // carried for reporting, never injected
}

// JitterSpec parameterizes jitter_link latency.
type JitterSpec struct {
	Base   uint64 `yaml:"base"`
	Spread uint64 `yaml:"spread"`
	Seed   uint64 `yaml:"seed,omitempty"` // 0 keeps the simulator default
}

// NodeSpec declares one switch. Type is TRA_switch (default) or SDN_switch.
type NodeSpec struct {
	ID   uint32 `yaml:"id"`
	Cost int    `yaml:"cost,omitempty"`
	Type string `yaml:"type,omitempty"`
}

// LinkSpec is an undirected physical link; it becomes a link each way.
type LinkSpec struct {
	ID int    `yaml:"id,omitempty"`
	A  uint32 `yaml:"a"`
	B  uint32 `yaml:"b"`
}

// DestinationSpec names a node that advertises itself at BroadcastAt.
type DestinationSpec struct {
	ID          uint32 `yaml:"id"`
	BroadcastAt uint64 `yaml:"broadcast_at"`
}

// DataSpec schedules a TRA data packet. Broadcast sends it to every node
// and ignores Dst.
type DataSpec struct {
	Src       uint32 `yaml:"src"`
	Dst       uint32 `yaml:"dst,omitempty"`
	Broadcast bool   `yaml:"broadcast,omitempty"`
	At        uint64 `yaml:"at"`
	Msg       string `yaml:"msg,omitempty"`
}

// RuleSpec schedules an SDN control packet from the controller to Switch:
// traffic matching Match goes to Action with share Percent.
type RuleSpec struct {
	Switch  uint32  `yaml:"switch"`
	Match   uint32  `yaml:"match"`
	Action  uint32  `yaml:"action"`
	Percent float64 `yaml:"percent"`
	At      uint64  `yaml:"at,omitempty"` // 0 = sdn_control_time
	Msg     string  `yaml:"msg,omitempty"`
}

// FlowSpec is a traffic demand from the legacy input.
type FlowSpec struct {
	ID   int    `yaml:"id"`
	Src  uint32 `yaml:"src"`
	Dst  uint32 `yaml:"dst"`
	Size uint64 `yaml:"size"`
}

const (
	traSwitch  = "TRA_switch"
	sdnSwitch  = "SDN_switch"
	simpleLink = "simple_link"
	jitterLink = "jitter_link"
)

var (
	validNodeTypes = map[string]bool{"": true, traSwitch: true, sdnSwitch: true}
	validLinkTypes = map[string]bool{"": true, simpleLink: true, jitterLink: true}
)

// LoadScenario reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML parses a YAML scenario.
func ParseYAML(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &sc, nil
}

// Validate checks that all fields in the scenario are valid.
func (s *Scenario) Validate() error {
	if len(s.Nodes) == 0 {
		return fmt.Errorf("scenario has no nodes")
	}
	if !validLinkTypes[s.LinkType] {
		return fmt.Errorf("unknown link_type %q; valid: simple_link, jitter_link", s.LinkType)
	}
	if s.Jitter != nil && s.LinkType != jitterLink {
		return fmt.Errorf("jitter is set but link_type is %q", s.linkType())
	}
	nodes := make(map[uint32]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.ID == math.MaxUint32 {
			return fmt.Errorf("nodes[%d]: id %d is reserved for broadcast", i, n.ID)
		}
		if nodes[n.ID] {
			return fmt.Errorf("nodes[%d]: duplicate id %d", i, n.ID)
		}
		if !validNodeTypes[n.Type] {
			return fmt.Errorf("nodes[%d]: unknown type %q; valid: TRA_switch, SDN_switch", i, n.Type)
		}
		if n.Cost < 0 {
			return fmt.Errorf("nodes[%d]: cost must be non-negative, got %d", i, n.Cost)
		}
		nodes[n.ID] = true
	}
	for i, l := range s.Links {
		if !nodes[l.A] || !nodes[l.B] {
			return fmt.Errorf("links[%d]: %d-%d references an unknown node", i, l.A, l.B)
		}
		if l.A == l.B {
			return fmt.Errorf("links[%d]: self-loop on %d", i, l.A)
		}
	}
	seen := make(map[uint32]bool, len(s.Destinations))
	for i, d := range s.Destinations {
		if !nodes[d.ID] {
			return fmt.Errorf("destinations[%d]: unknown node %d", i, d.ID)
		}
		if seen[d.ID] {
			return fmt.Errorf("destinations[%d]: duplicate destination %d", i, d.ID)
		}
		seen[d.ID] = true
	}
	for i, d := range s.Data {
		if !nodes[d.Src] {
			return fmt.Errorf("data[%d]: unknown src %d", i, d.Src)
		}
		if !d.Broadcast && !nodes[d.Dst] {
			return fmt.Errorf("data[%d]: unknown dst %d", i, d.Dst)
		}
	}
	for i, r := range s.Rules {
		if !nodes[r.Switch] {
			return fmt.Errorf("sdn_rules[%d]: unknown switch %d", i, r.Switch)
		}
		if math.IsNaN(r.Percent) || r.Percent < 0 || r.Percent > 1 {
			return fmt.Errorf("sdn_rules[%d]: percent must be in [0, 1], got %v", i, r.Percent)
		}
	}
	if s.Budget < 0 {
		return fmt.Errorf("budget must be non-negative, got %d", s.Budget)
	}
	return nil
}

func (s *Scenario) linkType() string {
	if s.LinkType == "" {
		return simpleLink
	}
	return s.LinkType
}
