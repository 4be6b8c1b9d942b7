// Package mcp exposes dusk's scanner and cache as Model Context Protocol
// tools so agent consumers can drive a scan over stdio.
package mcp

import "github.com/soren-n/dusk/pkg/cache"

// Config is shared by every registered tool.
type Config struct {
	Store *cache.Store
}
