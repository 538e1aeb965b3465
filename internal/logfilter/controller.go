// Package logfilter owns the process-wide log verbosity directives.
package logfilter

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrInvalidDirective is returned when a directive spec does not parse.
var ErrInvalidDirective = errors.New("invalid log directive")

// Directive sets the verbosity of one log target, e.g. sync=debug.
type Directive struct {
	Target string
	Level  logrus.Level
}

func (d Directive) String() string {
	return d.Target + "=" + d.Level.String()
}

// ParseDirectives parses a comma-separated list of target=level pairs,
// the same syntax the CLI accepts: "sync=debug,state=trace". A later
// entry for the same target overrides an earlier one.
func ParseDirectives(spec string) ([]Directive, error) {
	var out []Directive
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		target, level, ok := strings.Cut(token, "=")
		if !ok || target == "" {
			return nil, fmt.Errorf("%w: %q is not target=level", ErrInvalidDirective, token)
		}
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: unknown level %q", ErrInvalidDirective, token, level)
		}
		out = append(out, Directive{Target: target, Level: parsed})
	}
	return out, nil
}

// Controller is the single owner of the process's per-target log
// levels. It hands out one live logrus logger per target and keeps
// their levels in step with the active directive set.
//
// Lifecycle: initialized once at startup with the configured baseline,
// mutated through AddDirectives, restored with Reset, torn down with
// the process. Updates are serialized so a multi-directive spec is
// never applied partially.
type Controller struct {
	mu sync.Mutex

	base         *logrus.Logger
	defaultLevel logrus.Level
	baseline     []Directive

	// active directive set, insertion-ordered for stable dumps
	levels map[string]logrus.Level
	order  []string

	// live per-target loggers
	loggers map[string]*logrus.Logger
}

// NewController captures defaults as the startup baseline and applies
// it. Targets without a directive log at base's level.
func NewController(base *logrus.Logger, defaults string) (*Controller, error) {
	baseline, err := ParseDirectives(defaults)
	if err != nil {
		return nil, fmt.Errorf("baseline log directives: %w", err)
	}

	c := &Controller{
		base:         base,
		defaultLevel: base.GetLevel(),
		baseline:     baseline,
		levels:       make(map[string]logrus.Level),
		loggers:      make(map[string]*logrus.Logger),
	}
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
	return c, nil
}

// Logger returns the live logger entry for a target, creating it at the
// target's current effective level.
func (c *Controller) Logger(target string) *logrus.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.loggers[target]
	if !ok {
		l = logrus.New()
		l.SetOutput(c.base.Out)
		l.SetFormatter(c.base.Formatter)
		l.SetLevel(c.effectiveLevelLocked(target))
		c.loggers[target] = l
	}
	return l.WithField("target", target)
}

// AddDirectives parses spec and merges it into the active set: entries
// for a target already present overwrite it, new targets are added.
// On any parse error nothing is applied.
func (c *Controller) AddDirectives(spec string) error {
	directives, err := ParseDirectives(spec)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range directives {
		c.setLocked(d)
	}
	c.applyLocked()
	return nil
}

// Reset unconditionally restores the startup baseline.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Directives returns the active directive set in insertion order.
func (c *Controller) Directives() []Directive {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Directive, 0, len(c.order))
	for _, target := range c.order {
		out = append(out, Directive{Target: target, Level: c.levels[target]})
	}
	return out
}

func (c *Controller) setLocked(d Directive) {
	if _, ok := c.levels[d.Target]; !ok {
		c.order = append(c.order, d.Target)
	}
	c.levels[d.Target] = d.Level
}

func (c *Controller) resetLocked() {
	c.levels = make(map[string]logrus.Level)
	c.order = nil
	for _, d := range c.baseline {
		c.setLocked(d)
	}
	c.applyLocked()
}

// applyLocked pushes the active set onto every live logger.
func (c *Controller) applyLocked() {
	for target, l := range c.loggers {
		l.SetLevel(c.effectiveLevelLocked(target))
	}
}

func (c *Controller) effectiveLevelLocked(target string) logrus.Level {
	if level, ok := c.levels[target]; ok {
		return level
	}
	return c.defaultLevel
}
