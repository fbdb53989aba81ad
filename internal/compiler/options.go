package compiler

import (
	"fmt"
	"io"
	"log/slog"
)

// JumpPolicy decides what happens to a heading whose depth cannot be placed:
// a jump of more than one level, or no node at the depth above it.
type JumpPolicy string

const (
	// JumpOrphan persists the node without any edges. It stays embodied in
	// the Manifestation but is unreachable from the root. This matches the
	// behavior of existing outlines and is the default.
	JumpOrphan JumpPolicy = "orphan"

	// JumpReject aborts the compilation with an ErrDepthJump CompileError.
	JumpReject JumpPolicy = "reject"
)

// ValidJumpPolicies defines allowed jump policies.
var ValidJumpPolicies = map[JumpPolicy]bool{
	JumpOrphan: true,
	JumpReject: true,
}

// ParseJumpPolicy converts a config or flag value to a JumpPolicy.
// The empty string selects JumpOrphan.
func ParseJumpPolicy(s string) (JumpPolicy, error) {
	if s == "" {
		return JumpOrphan, nil
	}
	p := JumpPolicy(s)
	if !ValidJumpPolicies[p] {
		return "", fmt.Errorf("invalid jump policy %q: must be %q or %q", s, JumpOrphan, JumpReject)
	}
	return p, nil
}

// Option configures a compilation.
type Option func(*options)

type options struct {
	logger *slog.Logger
	policy JumpPolicy
	ids    IDGenerator
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		policy: JumpOrphan,
		ids:    UUIDv7Generator{},
	}
}

// WithLogger sets the logger for placement warnings and skipped lines.
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithJumpPolicy sets how unplaceable headings are handled.
// Default: JumpOrphan.
func WithJumpPolicy(p JumpPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithIDGenerator sets the entity ID source.
// Default: UUIDv7Generator. Tests use a sequential generator for golden output.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.ids = g
		}
	}
}
