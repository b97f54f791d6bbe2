// Package http exposes the tutorial pipeline as a JSON API.
//
// The routes are described by an embedded OpenAPI document; requests are
// validated against it before they reach a handler. Playback is stateless:
// clients carry the playback.State between calls.
package http
