// Package events defines the change-event schema describing committed
// mutations and the dispatcher that publishes those events to the external
// broadcast channel. Events are ephemeral and advisory: subscribers treat
// them as a cue to re-fetch the affected list, never as a replicated log.
package events
