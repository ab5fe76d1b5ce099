// Package logging provides utilities for structured logging across querykit.
//
// Design principles:
//   - Logging is dependency-injected, never global
//   - Each component owns its own scoped logger
//   - Logger scoping happens once at construction time
//   - slog.With() is used to attach default attributes
//   - If no logger is provided, a discard logger is used
//
// Global configuration (output format, level, destination) belongs only in main().
// Components must never call slog.SetDefault or access global loggers.
//
// Logging is intentionally sparse: normalization and parsing log once per
// call at debug level, never inside tree recursion.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// discardHandler is a handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// Discard returns a logger that discards all output.
// Use this as a default when no logger is provided.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// Default returns the provided logger if non-nil, otherwise returns a discard logger.
// This is the standard pattern for optional logger parameters:
//
//	func NewComponent(logger *slog.Logger) *Component {
//	    logger = logging.Default(logger)
//	    return &Component{logger: logger.With("component", "name")}
//	}
func Default(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return Discard()
}

// ParseLevel parses a level name such as "debug", "info", "warn" or "error".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return level, nil
}

// componentKey is the attribute that names the emitting component.
const componentKey = "component"

// ComponentFilterHandler filters records by a per-component minimum level.
// The component is taken from a "component" attribute, either attached with
// Logger.With or passed on the record itself. Records without a component
// use the default level.
type ComponentFilterHandler struct {
	next      slog.Handler
	levels    *levelTable
	component string
}

// levelTable is shared by a handler and every handler derived from it, so
// SetLevel affects loggers created before the call.
type levelTable struct {
	mu           sync.RWMutex
	defaultLevel slog.Level
	levels       map[string]slog.Level
}

// NewComponentFilterHandler wraps next, passing through records at or above
// defaultLevel unless a component has its own level.
func NewComponentFilterHandler(next slog.Handler, defaultLevel slog.Level) *ComponentFilterHandler {
	return &ComponentFilterHandler{
		next: next,
		levels: &levelTable{
			defaultLevel: defaultLevel,
			levels:       make(map[string]slog.Level),
		},
	}
}

// SetLevel sets the minimum level for a component.
func (h *ComponentFilterHandler) SetLevel(component string, level slog.Level) {
	h.levels.mu.Lock()
	defer h.levels.mu.Unlock()
	h.levels.levels[component] = level
}

// ClearLevel reverts a component to the default level.
func (h *ComponentFilterHandler) ClearLevel(component string) {
	h.levels.mu.Lock()
	defer h.levels.mu.Unlock()
	delete(h.levels.levels, component)
}

// Level returns the effective minimum level for a component.
func (h *ComponentFilterHandler) Level(component string) slog.Level {
	h.levels.mu.RLock()
	defer h.levels.mu.RUnlock()
	if level, ok := h.levels.levels[component]; ok {
		return level
	}
	return h.levels.defaultLevel
}

// DefaultLevel returns the level used for components without their own.
func (h *ComponentFilterHandler) DefaultLevel() slog.Level {
	h.levels.mu.RLock()
	defer h.levels.mu.RUnlock()
	return h.levels.defaultLevel
}

// SetDefaultLevel changes the level used for components without their own.
func (h *ComponentFilterHandler) SetDefaultLevel(level slog.Level) {
	h.levels.mu.Lock()
	defer h.levels.mu.Unlock()
	h.levels.defaultLevel = level
}

// Apply sets levels from settings of the form "level" (the default level),
// "component=level" or "component=" (revert the component to the default).
// Nothing changes unless every setting parses.
func (h *ComponentFilterHandler) Apply(settings ...string) error {
	type change struct {
		component string
		level     slog.Level
		clear     bool
	}
	var changes []change
	for _, s := range settings {
		component, text, scoped := strings.Cut(s, "=")
		if !scoped {
			component, text = "", s
		}
		component = strings.TrimSpace(component)
		if scoped && component == "" {
			return fmt.Errorf("log level %q: missing component", s)
		}
		if scoped && strings.TrimSpace(text) == "" {
			changes = append(changes, change{component: component, clear: true})
			continue
		}
		level, err := ParseLevel(text)
		if err != nil {
			return err
		}
		changes = append(changes, change{component: component, level: level})
	}

	for _, c := range changes {
		switch {
		case c.component == "":
			h.SetDefaultLevel(c.level)
		case c.clear:
			h.ClearLevel(c.component)
		default:
			h.SetLevel(c.component, c.level)
		}
	}
	return nil
}

// minLevel is the lowest level any component would accept.
func (h *ComponentFilterHandler) minLevel() slog.Level {
	h.levels.mu.RLock()
	defer h.levels.mu.RUnlock()
	lowest := h.levels.defaultLevel
	for _, level := range h.levels.levels {
		lowest = min(lowest, level)
	}
	return lowest
}

func (h *ComponentFilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	threshold := h.minLevel()
	if h.component != "" {
		threshold = h.Level(h.component)
	}
	if level < threshold {
		return false
	}
	return h.next == nil || h.next.Enabled(ctx, level)
}

func (h *ComponentFilterHandler) Handle(ctx context.Context, r slog.Record) error {
	component := h.component
	if component == "" {
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == componentKey {
				component = a.Value.String()
				return false
			}
			return true
		})
	}
	if r.Level < h.Level(component) || h.next == nil {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *ComponentFilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	component := h.component
	for _, a := range attrs {
		if a.Key == componentKey {
			component = a.Value.String()
		}
	}
	var next slog.Handler
	if h.next != nil {
		next = h.next.WithAttrs(attrs)
	}
	return &ComponentFilterHandler{next: next, levels: h.levels, component: component}
}

func (h *ComponentFilterHandler) WithGroup(name string) slog.Handler {
	var next slog.Handler
	if h.next != nil {
		next = h.next.WithGroup(name)
	}
	return &ComponentFilterHandler{next: next, levels: h.levels, component: h.component}
}
