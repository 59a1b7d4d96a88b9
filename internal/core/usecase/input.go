package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/bshishov/timelinewiki/internal/core/resources"
	"github.com/bshishov/timelinewiki/internal/core/validation"
	"github.com/bshishov/timelinewiki/internal/logger"
)

// InputValidator checks request bodies against the registered descriptors and
// records the outcome.
type InputValidator struct {
	registry *resources.Registry
}

func NewInputValidator(registry *resources.Registry) *InputValidator {
	return &InputValidator{registry: registry}
}

// Check returns nil or a *validation.ValidationError.
func (v *InputValidator) Check(ctx context.Context, schema string, input validation.Mapping) error {
	start := time.Now()
	_, err := v.registry.Validate(schema, input)
	validationDuration.WithLabelValues(schema).Observe(time.Since(start).Seconds())

	var verr *validation.ValidationError
	switch {
	case err == nil:
		validationTotal.WithLabelValues(schema, "valid").Inc()
	case errors.As(err, &verr):
		validationTotal.WithLabelValues(schema, "invalid").Inc()
		validationViolationsTotal.WithLabelValues(schema).Add(float64(len(verr.Violations)))
		logger.FromContext(ctx).Debug().
			Str("schema", schema).
			Int("violations", len(verr.Violations)).
			Msg("request body rejected")
	default:
		validationTotal.WithLabelValues(schema, "error").Inc()
	}
	return err
}

func stringField(m validation.Mapping, key string) (string, bool) {
	v, ok := m.Lookup(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func numberField(m validation.Mapping, key string) (float64, bool) {
	v, ok := m.Lookup(key)
	if !ok {
		return 0, false
	}
	return validation.Float(v)
}
