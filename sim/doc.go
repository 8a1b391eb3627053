// Package sim provides the discrete-event engine for simulating TRA and SDN
// switching networks.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - node.go: the Node interface, neighbor sets and the send/recv machinery
//   - event.go: event variants that drive the simulation (recv, send, packet generation)
//   - simulator.go: topology ownership, the event loop and injection helpers
//
// Protocol behaviour lives in tra_switch.go and sdn.go; both learn routes
// through the acceptance rule in routing.go.
//
// # Architecture
//
// The sim package owns the engine; helpers live in sub-packages:
//   - sim/registry/: tag-keyed prototype registries for headers, payloads, nodes, links and events
//   - sim/trace/: trace levels, event records and run summaries
//   - sim/scenario/: YAML and legacy text scenarios, SDN selection, network build and report
//   - sim/topology/: graph view of the adjacency for connectivity and reverse-path checks
//
// # Ordering
//
// Events run in (time, priority, insertion) order. Priority is a hash of the
// event's identifying fields, so runs with identical inputs produce identical
// traces.
package sim
