// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package uo

import "log/slog"

// UnresolvedPolicy decides what happens to an archive entry whose identifier
// matches none of the reader's hash tables.
type UnresolvedPolicy int

const (
	// AcceptUnresolved logs the identifier and delivers the entry with NoIndex.
	AcceptUnresolved UnresolvedPolicy = iota

	// RejectUnresolved aborts the load with an UnknownHashError.
	RejectUnresolved
)

func (p UnresolvedPolicy) String() string {
	switch p {
	case AcceptUnresolved:
		return "accept"
	case RejectUnresolved:
		return "reject"
	default:
		return "unknown"
	}
}

// DefaultCacheSize is the number of decompressed payloads an Archive keeps.
const DefaultCacheSize = 256

// Option configures the readers in this package.
type Option func(*config)

type config struct {
	logger    *slog.Logger
	policy    UnresolvedPolicy
	cacheSize int
	tableSize int
	compress  bool
}

func newConfig(opts []Option) *config {
	c := &config{
		logger:    slog.Default(),
		policy:    AcceptUnresolved,
		cacheSize: DefaultCacheSize,
		tableSize: defaultTableSize,
		compress:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithLogger sets the logger used for recoverable conditions.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUnresolvedPolicy sets the policy for identifiers no hash table knows.
// A handler implementing UnresolvedHandler takes precedence.
func WithUnresolvedPolicy(p UnresolvedPolicy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithCacheSize sets how many decompressed payloads an Archive caches.
// Zero disables caching.
func WithCacheSize(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.cacheSize = n
		}
	}
}

// WithTableSize sets how many entries a Writer puts in each table block.
func WithTableSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.tableSize = n
		}
	}
}

// WithCompression selects whether a Writer deflates payloads.
func WithCompression(enabled bool) Option {
	return func(c *config) {
		c.compress = enabled
	}
}

// LoggerFor returns the logger opts configure, so code wrapping these
// readers can log alongside them.
func LoggerFor(opts ...Option) *slog.Logger {
	return newConfig(opts).logger
}
