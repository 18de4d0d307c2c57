package main

import (
	"github.com/xyproto/env/v2"
)

const (
	DefaultLibraryRoot  = "libraries"
	DefaultLibraryCache = 32
	DefaultMaxDepth     = 10000
	DefaultAPISignal    = "API_MODE"
)

// Config holds the settings read from the environment.
type Config struct {
	LibraryRoot  string // MINIMUM_LIBRARY_ROOT
	LibraryCache int    // MINIMUM_LIBRARY_CACHE, compiled script libraries kept
	MaxDepth     int    // MINIMUM_MAX_DEPTH
	APISignal    string // MINIMUM_API_SIGNAL
	Trace        bool   // MINIMUM_TRACE
}

// LoadConfig reads the environment as it is now. env caches variables on
// first use, so the cache is reloaded on every call.
func LoadConfig() Config {
	env.Load()
	c := Config{
		LibraryRoot:  env.Str("MINIMUM_LIBRARY_ROOT", DefaultLibraryRoot),
		LibraryCache: env.Int("MINIMUM_LIBRARY_CACHE", DefaultLibraryCache),
		MaxDepth:     env.Int("MINIMUM_MAX_DEPTH", DefaultMaxDepth),
		APISignal:    env.Str("MINIMUM_API_SIGNAL", DefaultAPISignal),
		Trace:        env.Bool("MINIMUM_TRACE"),
	}
	if c.LibraryCache <= 0 {
		c.LibraryCache = DefaultLibraryCache
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	return c
}
