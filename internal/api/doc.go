// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts external clients to the mutation
// coordinator, translating HTTP concerns to hierarchy operations.
package api
