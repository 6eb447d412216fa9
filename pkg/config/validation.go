package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

// ValidationError represents a single configuration validation failure.
type ValidationError struct {
	Field   string
	Tag     string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "min":
		return fmt.Sprintf("%s is below the allowed minimum", e.Field)
	case "max":
		return fmt.Sprintf("%s is above the allowed maximum", e.Field)
	case "oneof":
		return fmt.Sprintf("%s has an unsupported value", e.Field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", e.Field)
	default:
		return fmt.Sprintf("%s failed validation", e.Field)
	}
}

// ValidationErrors aggregates all failures found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterStructValidation(validateOptimizerRelations, OptimizerConfig{})
	})
	return validate
}

// validateOptimizerRelations enforces the cross-field constraints that
// struct tags cannot express.
func validateOptimizerRelations(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(OptimizerConfig)

	if cfg.NumElites >= cfg.PopulationSize {
		sl.ReportError(cfg.NumElites, "NumElites", "num_elites", "ltpopulation", "")
	}
	if cfg.TournamentSize > cfg.PopulationSize {
		sl.ReportError(cfg.TournamentSize, "TournamentSize", "tournament_size", "ltepopulation", "")
	}
}

// Validate checks the configuration and returns an InvalidConfiguration
// error wrapping the individual failures.
func (c *Config) Validate() error {
	return validateStruct(c)
}

// Validate checks the optimizer section alone. The optimizer constructor
// calls this so invalid parameter combinations surface before the loop
// starts.
func (c *OptimizerConfig) Validate() error {
	return validateStruct(c)
}

func validateStruct(v interface{}) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, errors.InvalidConfiguration, "config validation failed")
	}

	var failures ValidationErrors
	for _, fe := range invalid {
		msg := ""
		switch fe.Tag() {
		case "ltpopulation":
			msg = "num_elites must be smaller than population_size"
		case "ltepopulation":
			msg = "tournament_size cannot exceed population_size"
		}
		failures = append(failures, ValidationError{
			Field:   fe.Namespace(),
			Tag:     fe.Tag(),
			Value:   fe.Value(),
			Message: msg,
		})
	}

	return errors.Wrap(failures, errors.InvalidConfiguration, "invalid configuration")
}
