// Package harness runs conformance scenarios against the merge engine.
//
// A scenario merges or identifies batches in order against a fresh
// in-memory store, checks each step's outcome, records the events delivered
// to its watches and finally asserts on the trace and the stored statements.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: contact_dedup
//	description: "A re-merged contact is identified, not duplicated"
//	app: addressbook
//	mode: new
//	watches:
//	  - name: contacts
//	    types: [nco:PersonContact]
//	steps:
//	  - merge:
//	      resources:
//	        _:alice:
//	          a: nco:PersonContact
//	          nco:fullname: '"Alice"'
//	    expect:
//	      created: 1
//	  - identify:
//	      resources:
//	        _:again:
//	          a: nco:PersonContact
//	          nco:fullname: '"Alice"'
//	    expect:
//	      mapped: 1
//	assertions:
//	  - type: count
//	    pattern: ["*", a, nco:PersonContact]
//	    count: 1
//	  - type: values
//	    subject: $alice
//	    property: nco:fullname
//	    values: ['"Alice"']
//
// Terms use the compact syntax of rdf.Namespaces.ParseTerm. "$name" refers
// to the resource the blank node _:name was mapped to by an earlier step.
//
// # Assertion Types
//
//   - count: number of stored statements matching a triple pattern
//   - events: number of events a watch received, optionally of one kind
//   - values: exact value set of a resource property
//
// # Deterministic Testing
//
// Every run uses sequential resource and graph ids and stepping clocks from
// testutil, and traces name store identifiers by label ("$alice", "g1"),
// so traces are identical across runs and compare against golden files.
package harness
