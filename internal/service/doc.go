// Package service contains the mutation coordinator, the only component
// permitted to change hierarchy state. Every mutating operation runs under
// the owning list's exclusion lock inside a single transaction; committed
// mutations are handed to the event dispatcher after the lock is released.
package service
