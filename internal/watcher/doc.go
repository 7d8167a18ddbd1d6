// Package watcher distributes resource change notifications to subscribers.
//
// A Subscription declares three independent filter sets: resources,
// properties and types. An empty set matches anything in that dimension, but
// at least one set must be non-empty. A property change on resource R is
// delivered to S when every non-empty dimension of S matches:
//
//	(S.resources empty OR R in S.resources) AND
//	(S.properties empty OR P in S.properties) AND
//	(S.types empty OR a current or changed type of R in S.types)
//
// rdf:type changes additionally produce TypesAdded and TypesRemoved events
// under the same matching. Creation and removal events ignore the property
// dimension and only reach subscriptions filtering on resources or types.
//
// The Manager keeps one index per dimension mapping each filter value to its
// subscriptions, so matching touches only the subscriptions indexed under the
// changed resource, property and types, and removing a subscription costs
// the size of its own filters.
//
// Delivery is fire-and-forget: events are appended to a per-subscription
// mailbox and never block the notifier. Consumers drain the mailbox with
// Next or TryNext.
package watcher
