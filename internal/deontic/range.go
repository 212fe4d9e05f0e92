package deontic

import (
	"fmt"
	"math"
	"strings"

	"nadico/internal/logging"
)

// RangeType selects how the range reacts to new generalization results.
type RangeType string

const (
	Discrete          RangeType = "DISCRETE"
	StaticMinMax      RangeType = "STATIC_MIN_MAX"
	ExpandingMinMax   RangeType = "EXPANDING_MIN_MAX"
	SituationalMinMax RangeType = "SITUATIONAL_MIN_MAX"
	HistoryMinMax     RangeType = "HISTORY_MIN_MAX"
)

const (
	defaultHistoryLen  = 100
	defaultTolerance   = 0.05
	defaultMaxMovement = 1.0
)

// RangeConfig parameterises a Range.
type RangeConfig struct {
	Type          RangeType
	HistoryLength int
	// StaticLower and StaticUpper are required for STATIC_MIN_MAX.
	StaticLower *float64
	StaticUpper *float64
	// Tolerance is the fraction of the full range treated as "near" an
	// extreme or the center.
	Tolerance float64
	// MaxMovement is the fraction of the previous range the normative
	// center may drift per update.
	MaxMovement float64
	Mapper      MapperKind
}

// DefaultRangeConfig returns a history-averaged, zero-based setup.
func DefaultRangeConfig() RangeConfig {
	lower, upper := 0.0, 0.0
	return RangeConfig{
		Type:          HistoryMinMax,
		HistoryLength: defaultHistoryLen,
		StaticLower:   &lower,
		StaticUpper:   &upper,
		Tolerance:     defaultTolerance,
		MaxMovement:   defaultMaxMovement,
		Mapper:        ZeroBasedMapperKind,
	}
}

// ValenceSource reports the lowest and highest aggregated valence of the
// latest generalization. ok is false when nothing has been generalized.
type ValenceSource interface {
	MinValence() (v float64, ok bool)
	MaxValence() (v float64, ok bool)
}

// Range is the dynamic interval valences are classified against.
type Range struct {
	owner   string
	context string
	cfg     RangeConfig

	lower     float64
	upper     float64
	hasBounds bool

	historyLower *history
	historyUpper *history

	mapper Mapper
}

// NewRange validates cfg and sets up the initial bounds. owner and
// context only appear in error messages and logs.
func NewRange(owner, context string, cfg RangeConfig) (*Range, error) {
	r := &Range{owner: owner, context: context, cfg: cfg}
	switch cfg.Type {
	case StaticMinMax:
		if cfg.StaticLower == nil {
			return nil, fmt.Errorf("%w: static deontic range without lower boundary", ErrConfiguration)
		}
		if cfg.StaticUpper == nil {
			return nil, fmt.Errorf("%w: static deontic range without upper boundary", ErrConfiguration)
		}
		r.lower, r.upper, r.hasBounds = *cfg.StaticLower, *cfg.StaticUpper, true
	case HistoryMinMax:
		length := cfg.HistoryLength
		if length <= 0 {
			length = defaultHistoryLen
		}
		r.historyLower = newHistory(length)
		r.historyUpper = newHistory(length)
		r.hasBounds = true
	case ExpandingMinMax, SituationalMinMax, Discrete:
	default:
		return nil, fmt.Errorf("%w: deontic range type unknown: %q", ErrConfiguration, cfg.Type)
	}

	mapper, err := NewMapper(cfg.Mapper, r, cfg.Tolerance)
	if err != nil {
		return nil, err
	}
	r.mapper = mapper
	logging.RangeDebug("%s: initialized deontic range %s with %s mapper", owner, cfg.Type, mapper.Kind())
	return r, nil
}

// Update performs one range transition from the source's min and max
// valence. It is a no-op while the source has no data.
func (r *Range) Update(src ValenceSource) error {
	if src == nil {
		return fmt.Errorf("%w: no generalizer registered for deontic range; context: %s", ErrMemoryUpdate, r.context)
	}
	minValence, okMin := src.MinValence()
	maxValence, okMax := src.MaxValence()
	if !okMin || !okMax {
		logging.RangeDebug("%s: ignored deontic range update since memory is empty", r.owner)
		return nil
	}
	if minValence <= -math.MaxFloat64 || math.IsNaN(minValence) || math.IsInf(minValence, 0) {
		return fmt.Errorf("%w: %s: deontic range update failed, input value is outside lower boundary of number range; value: %v; context: %s",
			ErrMemoryUpdate, r.owner, minValence, r.context)
	}
	if maxValence >= math.MaxFloat64 || math.IsNaN(maxValence) || math.IsInf(maxValence, 0) {
		return fmt.Errorf("%w: %s: deontic range update failed, input value is outside upper boundary of number range; value: %v; context: %s",
			ErrMemoryUpdate, r.owner, maxValence, r.context)
	}

	switch r.cfg.Type {
	case Discrete, StaticMinMax:
	case ExpandingMinMax:
		if !r.hasBounds {
			r.lower, r.upper, r.hasBounds = minValence, maxValence, true
		}
		r.lower = math.Min(r.lower, minValence)
		r.upper = math.Max(r.upper, maxValence)
	case SituationalMinMax:
		r.lower, r.upper, r.hasBounds = minValence, maxValence, true
	case HistoryMinMax:
		r.historyLower.memorize(minValence)
		r.historyUpper.memorize(maxValence)
		r.lower = r.historyLower.mean()
		r.upper = r.historyUpper.mean()
	default:
		return fmt.Errorf("%w: unknown deontic range type %q; context: %s", ErrMemoryUpdate, r.cfg.Type, r.context)
	}
	logging.RangeDebug("%s: deontic range now [%v, %v]", r.owner, r.lower, r.upper)
	return nil
}

// Lower returns the lower bound, or 0 before the first update of an
// expanding or situational range.
func (r *Range) Lower() float64 { return r.lower }

// Upper returns the upper bound, or 0 before the first update of an
// expanding or situational range.
func (r *Range) Upper() float64 { return r.upper }

// HasBounds reports whether the bounds have been established.
func (r *Range) HasBounds() bool { return r.hasBounds }

func (r *Range) Type() RangeType     { return r.cfg.Type }
func (r *Range) Config() RangeConfig { return r.cfg }
func (r *Range) Mapper() Mapper      { return r.mapper }

// TermForValue classifies v with the configured mapper.
func (r *Range) TermForValue(v float64) Term { return r.mapper.TermForValue(v) }

// Invert mirrors v across the normative center.
func (r *Range) Invert(v float64) float64 { return r.mapper.Invert(v) }

// NormativeCenter returns the mapper's center bounded by the configured
// maximum movement.
func (r *Range) NormativeCenter() float64 {
	return r.mapper.NormativeCenterWithMovement(r.cfg.MaxMovement)
}

func (r *Range) NormativeValence(v float64) Valence { return r.mapper.NormativeValence(v) }

// ValueWithinUpperBoundaryTolerance reports whether v lies in the
// tolerance band below the upper bound (or above it).
func (r *Range) ValueWithinUpperBoundaryTolerance(v float64) bool {
	return r.upper-math.Abs(r.upper-r.lower)*r.cfg.Tolerance <= v
}

// ValueWithinLowerBoundaryTolerance reports whether v lies in the
// tolerance band above the lower bound (or below it).
func (r *Range) ValueWithinLowerBoundaryTolerance(v float64) bool {
	return r.lower+math.Abs(r.upper-r.lower)*r.cfg.Tolerance >= v
}

func (r *Range) String() string {
	if r.mapper == nil {
		return "DeonticRange still empty!"
	}
	var sb strings.Builder
	sb.WriteString(string(r.cfg.Type))
	sb.WriteString(r.mapper.String())
	return sb.String()
}

// history keeps the most recent values up to a fixed length.
type history struct {
	limit  int
	values []float64
}

func newHistory(limit int) *history {
	return &history{limit: limit, values: make([]float64, 0, limit)}
}

func (h *history) memorize(v float64) {
	if len(h.values) == h.limit {
		copy(h.values, h.values[1:])
		h.values = h.values[:len(h.values)-1]
	}
	h.values = append(h.values, v)
}

func (h *history) mean() float64 {
	if len(h.values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range h.values {
		sum += v
	}
	return sum / float64(len(h.values))
}

func (h *history) len() int { return len(h.values) }
