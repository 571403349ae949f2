// Package ws implements the real-time broadcast channel over websockets.
// The Hub fans committed change events out to connected subscribers and
// satisfies events.Publisher; TokenService issues the short-lived tokens
// subscribers present when opening a connection.
package ws
