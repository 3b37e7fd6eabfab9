package feeders

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// YamlFeeder reads a flat YAML document into a struct's `yaml`-tagged
// fields, recording each field's provenance through an optional
// FieldTracker. golobby/config/v3/pkg/feeder has no YAML counterpart to
// its Json/Toml feeders, so this fills that gap directly against
// gopkg.in/yaml.v3; trimmed to the flat-scalar-struct shape HubConfig
// actually has (no nested structs, slices, arrays, maps, or pointers to
// walk).
type YamlFeeder struct {
	Path         string
	fieldTracker FieldTracker
}

// NewYamlFeeder creates a new YamlFeeder that reads from the specified YAML file.
func NewYamlFeeder(filePath string) *YamlFeeder {
	return &YamlFeeder{Path: filePath}
}

// SetFieldTracker sets the field tracker for recording field populations.
func (y *YamlFeeder) SetFieldTracker(tracker FieldTracker) {
	y.fieldTracker = tracker
}

// Feed reads the YAML file and populates structure's yaml-tagged fields.
func (y *YamlFeeder) Feed(structure interface{}) error {
	content, err := os.ReadFile(y.Path)
	if err != nil {
		return fmt.Errorf("yaml feed error: reading %s: %w", y.Path, err)
	}

	structValue := reflect.ValueOf(structure)
	if structValue.Kind() != reflect.Ptr || structValue.Elem().Kind() != reflect.Struct {
		if err := yaml.Unmarshal(content, structure); err != nil {
			return fmt.Errorf("yaml feed error: %w", err)
		}
		return nil
	}

	data := make(map[string]interface{})
	if err := yaml.Unmarshal(content, &data); err != nil {
		return fmt.Errorf("yaml feed error: parsing %s: %w", y.Path, err)
	}
	return y.processFields(structValue.Elem(), data)
}

// processFields walks structure's exported yaml-tagged scalar fields,
// setting each from data and recording its provenance.
func (y *YamlFeeder) processFields(rv reflect.Value, data map[string]interface{}) error {
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rt.Field(i)
		if !field.CanSet() {
			continue
		}
		yamlTag, ok := fieldType.Tag.Lookup("yaml")
		if !ok {
			continue
		}
		if err := y.setFieldFromYaml(field, yamlTag, data, fieldType.Name); err != nil {
			return fmt.Errorf("error in field '%s': %w", fieldType.Name, err)
		}
	}
	return nil
}

func (y *YamlFeeder) setFieldFromYaml(field reflect.Value, yamlTag string, data map[string]interface{}, fieldName string) error {
	value, found := data[yamlTag]
	if !found {
		y.track(field, fieldName, yamlTag, nil, "")
		return nil
	}
	if err := y.setFieldValue(field, value); err != nil {
		return err
	}
	y.track(field, fieldName, yamlTag, field.Interface(), yamlTag)
	return nil
}

func (y *YamlFeeder) track(field reflect.Value, fieldName, yamlTag string, value interface{}, foundKey string) {
	if y.fieldTracker == nil {
		return
	}
	y.fieldTracker.RecordFieldPopulation(FieldPopulation{
		FieldPath:  fieldName,
		FieldName:  fieldName,
		FieldType:  field.Type().String(),
		FeederType: "*feeders.YamlFeeder",
		SourceType: "yaml",
		SourceKey:  foundKey,
		Value:      value,
		SearchKeys: []string{yamlTag},
		FoundKey:   foundKey,
	})
}

// setFieldValue sets field from value. time.Duration fields take a
// duration literal string ("5s") ahead of the generic scalar-kind switch.
func (y *YamlFeeder) setFieldValue(field reflect.Value, value interface{}) error {
	if !field.CanSet() {
		return wrapYamlFieldCannotBeSetError()
	}
	valueReflect := reflect.ValueOf(value)
	if !valueReflect.IsValid() {
		return nil
	}

	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		str, ok := value.(string)
		if !ok {
			return wrapYamlTypeConversionError(valueReflect.Type().String(), field.Type().String())
		}
		d, err := time.ParseDuration(str)
		if err != nil {
			return fmt.Errorf("cannot convert string '%s' to time.Duration: %w", str, err)
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	if valueReflect.Type().ConvertibleTo(field.Type()) {
		field.Set(valueReflect.Convert(field.Type()))
		return nil
	}

	str, ok := value.(string)
	if !ok {
		return wrapYamlTypeConversionError(valueReflect.Type().String(), field.Type().String())
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(str)
	case reflect.Bool:
		switch str {
		case "true", "1":
			field.SetBool(true)
		case "false", "0":
			field.SetBool(false)
		default:
			return wrapYamlBoolConversionError(str)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return fmt.Errorf("cannot convert string '%s' to int: %w", str, err)
		}
		field.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(str, 10, 64)
		if err != nil {
			return fmt.Errorf("cannot convert string '%s' to uint: %w", str, err)
		}
		field.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("cannot convert string '%s' to float: %w", str, err)
		}
		field.SetFloat(v)
	default:
		return wrapYamlUnsupportedFieldTypeError(field.Type().String())
	}
	return nil
}
