// Package store defines the persistence contracts for the hierarchy
// (cluster lists, clusters, cards) together with the shared error
// vocabulary and transaction helper. Implementations live under
// internal/platform; callers depend only on these interfaces.
package store
