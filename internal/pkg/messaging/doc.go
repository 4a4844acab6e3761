// Package messaging publishes and consumes domain events.
//
// Use cases depend on Publisher and Consumer only. The NATS driver carries
// events between replicas; the memory driver keeps them in process for
// single-node deployments and tests.
package messaging
