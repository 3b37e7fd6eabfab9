package config

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// Static errors for the config package.
var (
	ErrConfigCannotBeNil    = errors.New("config cannot be nil")
	ErrRequiredFieldNotSet  = errors.New("required field is not set")
	ErrUnsupportedFieldType = errors.New("unsupported field type for default value")
)

var durationType = reflect.TypeOf(time.Duration(0))

// Loader applies struct-tag defaults to a HubConfig and checks its required
// fields, tracking which sources contributed to it for introspection.
type Loader struct {
	sources []*ConfigSource
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{sources: make([]*ConfigSource, 0)}
}

// Load applies struct-tag defaults to config for every zero-valued field,
// then validates that every `required:"true"` field ended up set.
func (l *Loader) Load(ctx context.Context, config interface{}) error {
	if config == nil {
		return ErrConfigCannotBeNil
	}
	if err := applyDefaultsRecursive(config, ""); err != nil {
		return err
	}
	return l.Validate(ctx, config)
}

// Validate checks that every `required:"true"` field of config is set.
func (l *Loader) Validate(_ context.Context, config interface{}) error {
	return validateRequiredRecursive(config, "")
}

// AddSource records a configuration source that contributed to the most
// recent Load, in the order they were applied (ascending precedence).
func (l *Loader) AddSource(source *ConfigSource) {
	l.sources = append(l.sources, source)
}

// Sources returns the configuration sources recorded so far.
func (l *Loader) Sources() []*ConfigSource {
	return l.sources
}

// applyDefaultsRecursive walks config's fields via reflection, setting any
// zero-valued field that carries a `default` struct tag.
func applyDefaultsRecursive(v interface{}, fieldPath string) error {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		currentPath := fieldType.Name
		if fieldPath != "" {
			currentPath = fieldPath + "." + currentPath
		}

		if defaultValue := fieldType.Tag.Get("default"); defaultValue != "" && field.IsZero() {
			if err := setFieldValue(field, defaultValue); err != nil {
				return fmt.Errorf("applying default for %s: %w", currentPath, err)
			}
		}

		switch {
		case field.Kind() == reflect.Struct:
			if err := applyDefaultsRecursive(field.Addr().Interface(), currentPath); err != nil {
				return err
			}
		case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct && !field.IsNil():
			if err := applyDefaultsRecursive(field.Interface(), currentPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateRequiredRecursive walks config's fields via reflection, failing on
// the first zero-valued field that carries a `required:"true"` struct tag.
func validateRequiredRecursive(v interface{}, fieldPath string) error {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rt.Field(i)

		currentPath := fieldType.Name
		if fieldPath != "" {
			currentPath = fieldPath + "." + currentPath
		}

		if fieldType.Tag.Get("required") == "true" && field.IsZero() {
			return fmt.Errorf("%w: %s", ErrRequiredFieldNotSet, currentPath)
		}

		switch {
		case field.Kind() == reflect.Struct:
			if err := validateRequiredRecursive(field.Addr().Interface(), currentPath); err != nil {
				return err
			}
		case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct && !field.IsNil():
			if err := validateRequiredRecursive(field.Interface(), currentPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// setFieldValue sets a field from a string default using reflection.
// time.Duration fields (HubConfig's several *Interval/*Timeout fields) take
// duration literals ("5s", "1m") rather than bare integers, so they're
// special-cased ahead of the generic integer-kind branch below.
func setFieldValue(field reflect.Value, defaultValue string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(defaultValue)
		if err != nil {
			return fmt.Errorf("parsing duration value %q: %w", defaultValue, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(defaultValue)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(defaultValue, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing int value %q: %w", defaultValue, err)
		}
		field.SetInt(val)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(defaultValue, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing uint value %q: %w", defaultValue, err)
		}
		field.SetUint(val)
	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(defaultValue, 64)
		if err != nil {
			return fmt.Errorf("parsing float value %q: %w", defaultValue, err)
		}
		field.SetFloat(val)
	case reflect.Bool:
		val, err := strconv.ParseBool(defaultValue)
		if err != nil {
			return fmt.Errorf("parsing bool value %q: %w", defaultValue, err)
		}
		field.SetBool(val)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFieldType, field.Kind().String())
	}
	return nil
}
