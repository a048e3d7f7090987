// Package ktrace parses the plain-text traces that describe a Kafka
// deployment: which topics each consumer group subscribes to, which source
// repositories publish to each topic, and which deployment units run each
// consumer group.
//
// The traces are loosely structured log output produced by shell tooling.
// Parsing is line oriented and single pass; lines that carry no marker the
// parser knows about are either treated as payload (subscription and
// deployment traces) or ignored (producer trace).
//
// # Formats
//
// Subscription trace:
//
//	[Subscribed Topic(s) for Consumer Group: orders-service]
//	orders
//	payments
//
// Producer trace:
//
//	[*] Searching for producers to topic: orders
//	[!] Found file containing ORDERS_TOPIC: /src/git/org/team/x/svc-a/src/Publisher.java
//
// Deployment trace:
//
//	[*] Locating service for consumer group ID: orders-service
//	/deploy/ansible/services/unit-orders.yml
//
// Lines preceding the first header of a subscription or deployment trace are
// attributed to the empty group ID.
package ktrace
