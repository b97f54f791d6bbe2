// Package mcp exposes tutorial listing, generation and playback as Model
// Context Protocol tools over stdio or SSE.
package mcp
