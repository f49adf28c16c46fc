// Package macros expands square-bracket macros in ad server tracking tags.
// CM360 tag templates carry placeholders like ord=[timestamp] that must be
// filled before the tag is appended to a DSP payload.
package macros

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// TagExpander handles macro expansion in tracking tags with observability
type TagExpander struct {
	logger       *zap.Logger
	expansions   map[string]ExpansionFunc
	expansionsMu sync.RWMutex
	strictMode   bool // If true, any macro expansion failure causes the entire operation to fail

	// Metrics
	expansionCounter  *prometheus.CounterVec
	expansionDuration prometheus.Histogram
	failureCounter    *prometheus.CounterVec
}

// ExpansionFunc defines the signature for macro expansion functions
type ExpansionFunc func(ctx *ExpansionContext) (string, error)

// ExpansionContext contains all data available for macro expansion
type ExpansionContext struct {
	CampaignID  string
	PlacementID string
	Site        string
	NetworkID   string
	Timestamp   time.Time
}

// NewTagExpander creates a new tag expander with default macros
func NewTagExpander(logger *zap.Logger) *TagExpander {
	return newTagExpander(logger, false, promauto.With(prometheus.DefaultRegisterer))
}

// NewTagExpanderForTesting creates a tag expander with an isolated metrics
// registry so parallel tests do not collide on registration.
func NewTagExpanderForTesting(logger *zap.Logger, strictMode bool) *TagExpander {
	return newTagExpander(logger, strictMode, promauto.With(prometheus.NewRegistry()))
}

func newTagExpander(logger *zap.Logger, strictMode bool, factory promauto.Factory) *TagExpander {
	expander := &TagExpander{
		logger:     logger,
		expansions: make(map[string]ExpansionFunc),
		strictMode: strictMode,
		expansionCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tag_macro_expansions_total",
				Help: "Total number of tag macro expansions performed",
			},
			[]string{"macro", "success"},
		),
		expansionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tag_macro_expansion_duration_seconds",
				Help:    "Time taken to expand all macros in a tag",
				Buckets: prometheus.DefBuckets,
			},
		),
		failureCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tag_macro_expansion_failures_total",
				Help: "Total number of tag macro expansion failures",
			},
			[]string{"macro", "error_type"},
		),
	}

	expander.registerDefaultMacros()
	return expander
}

// SetStrictMode enables or disables strict macro expansion mode
func (e *TagExpander) SetStrictMode(strict bool) {
	e.strictMode = strict
}

// ExpandTag expands all macros in the given tag URL
func (e *TagExpander) ExpandTag(rawTag string, ctx *ExpansionContext) (string, error) {
	start := time.Now()
	defer func() {
		e.expansionDuration.Observe(time.Since(start).Seconds())
	}()

	if rawTag == "" {
		return "", nil
	}

	// Parse to validate; tracking tags are URLs even with ;-delimited params
	if _, err := url.Parse(rawTag); err != nil {
		e.logger.Error("Failed to parse tag for macro expansion",
			zap.String("tag", rawTag),
			zap.Error(err))
		return rawTag, err
	}

	expanded, macrosFound, err := e.expandMacros(rawTag, ctx)
	if err != nil {
		// In lenient mode, log and continue with the partially expanded tag
		if !e.strictMode {
			e.logger.Warn("Tag macro expansion completed with errors, continuing with partial expansion",
				zap.String("original_tag", rawTag),
				zap.String("partial_tag", expanded),
				zap.Error(err))
		} else {
			return "", err
		}
	}

	if macrosFound > 0 {
		e.logger.Debug("Expanded macros in tag",
			zap.String("original_tag", rawTag),
			zap.String("expanded_tag", expanded),
			zap.Int("macros_found", macrosFound))
	}

	return expanded, nil
}

// expandMacros replaces every known [macro] placeholder in a single pass
func (e *TagExpander) expandMacros(rawTag string, ctx *ExpansionContext) (string, int, error) {
	e.expansionsMu.RLock()
	defer e.expansionsMu.RUnlock()

	// Pre-scan the tag so untouched templates skip the replacer entirely
	var foundMacros []string
	var replacements []string

	for macro := range e.expansions {
		placeholder := "[" + macro + "]"
		if strings.Contains(rawTag, placeholder) {
			foundMacros = append(foundMacros, macro)
		}
	}

	if len(foundMacros) == 0 {
		return rawTag, 0, nil
	}

	for _, macro := range foundMacros {
		placeholder := "[" + macro + "]"
		expansionFunc := e.expansions[macro]

		value, err := expansionFunc(ctx)
		if err != nil {
			e.expansionCounter.WithLabelValues(macro, "false").Inc()
			e.failureCounter.WithLabelValues(macro, "expansion_error").Inc()
			e.logger.Error("Failed to expand tag macro",
				zap.String("macro", macro),
				zap.String("tag", rawTag),
				zap.Error(err))

			if e.strictMode {
				return "", 0, fmt.Errorf("macro expansion failed in strict mode for macro '%s': %w", macro, err)
			}
			continue
		}

		replacements = append(replacements, placeholder, url.QueryEscape(value))
		e.expansionCounter.WithLabelValues(macro, "true").Inc()
	}

	if len(replacements) > 0 {
		replacer := strings.NewReplacer(replacements...)
		return replacer.Replace(rawTag), len(foundMacros), nil
	}

	return rawTag, 0, nil
}

// RegisterMacro adds a custom macro expansion function
func (e *TagExpander) RegisterMacro(name string, expansionFunc ExpansionFunc) error {
	if name == "" {
		return fmt.Errorf("macro name cannot be empty")
	}
	if expansionFunc == nil {
		return fmt.Errorf("expansion function cannot be nil")
	}

	e.expansionsMu.Lock()
	defer e.expansionsMu.Unlock()

	e.expansions[name] = expansionFunc

	e.logger.Info("Registered custom tag macro", zap.String("macro", name))
	return nil
}

// GetRegisteredMacros returns a list of all registered macro names
func (e *TagExpander) GetRegisteredMacros() []string {
	e.expansionsMu.RLock()
	defer e.expansionsMu.RUnlock()

	macros := make([]string, 0, len(e.expansions))
	for name := range e.expansions {
		macros = append(macros, name)
	}
	return macros
}

// ValidateTag returns the macro names in the tag that have no registered
// expansion. An empty result means the tag will expand cleanly.
func (e *TagExpander) ValidateTag(rawTag string) []string {
	var unsupported []string

	pos := 0
	for {
		start := strings.Index(rawTag[pos:], "[")
		if start == -1 {
			break
		}
		start += pos

		end := strings.Index(rawTag[start:], "]")
		if end == -1 {
			break
		}
		end += start

		macro := rawTag[start+1 : end]

		e.expansionsMu.RLock()
		_, supported := e.expansions[macro]
		e.expansionsMu.RUnlock()

		if !supported {
			unsupported = append(unsupported, macro)
		}
		pos = end + 1
	}

	return unsupported
}

// registerDefaultMacros registers the macros CM360 tag templates use
func (e *TagExpander) registerDefaultMacros() {
	// ord=[timestamp] is the ad server's cachebusting convention
	e.expansions["timestamp"] = func(ctx *ExpansionContext) (string, error) {
		return fmt.Sprintf("%d", ctx.Timestamp.Unix()), nil
	}

	e.expansions["timestamp_ms"] = func(ctx *ExpansionContext) (string, error) {
		return fmt.Sprintf("%d", ctx.Timestamp.UnixMilli()), nil
	}

	e.expansions["cachebuster"] = func(ctx *ExpansionContext) (string, error) {
		return fmt.Sprintf("%d", time.Now().UnixNano()), nil
	}

	e.expansions["uuid"] = func(ctx *ExpansionContext) (string, error) {
		return uuid.New().String(), nil
	}

	e.expansions["campaign_id"] = func(ctx *ExpansionContext) (string, error) {
		return ctx.CampaignID, nil
	}

	e.expansions["placement_id"] = func(ctx *ExpansionContext) (string, error) {
		return ctx.PlacementID, nil
	}

	e.expansions["site"] = func(ctx *ExpansionContext) (string, error) {
		return ctx.Site, nil
	}

	e.expansions["network_id"] = func(ctx *ExpansionContext) (string, error) {
		return ctx.NetworkID, nil
	}
}
