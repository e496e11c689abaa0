package server

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	EnvPrefix = "GREETER"
)

// RuntimeOverrider applies overrides on top of a parsed ServerRuntime.
type RuntimeOverrider interface {
	ApplyOverrides(runtime *ServerRuntime) error
}

type envRuntimeOverrider struct {
	prefix string
}

// NewEnvRuntimeOverrider returns a RuntimeOverrider that reads GREETER_*
// environment variables. Keys are the upper-cased field path, e.g.
// GREETER_TRANSPORTPROTOCOL or GREETER_STREAMABLEHTTPCONFIG_PORT.
func NewEnvRuntimeOverrider() RuntimeOverrider {
	return &envRuntimeOverrider{prefix: EnvPrefix}
}

func (e *envRuntimeOverrider) ApplyOverrides(runtime *ServerRuntime) error {
	if runtime == nil {
		return fmt.Errorf("cannot apply overrides to a nil runtime")
	}

	reflectRuntime := reflect.ValueOf(runtime).Elem()
	_, err := processStruct(reflectRuntime, e.prefix)
	return err
}

func processStruct(val reflect.Value, prefix string) (bool, error) {
	typ := val.Type()

	madeUpdate := false
	for i := 0; i < val.NumField(); i++ {
		fieldVal := val.Field(i)
		fieldTyp := typ.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if fieldVal.Kind() == reflect.Ptr && fieldVal.Type().Elem().Kind() == reflect.Struct {
			wasNil := false
			if fieldVal.IsNil() {
				fieldVal.Set(reflect.New(fieldVal.Type().Elem()))
				wasNil = true
			}

			updated, err := processStruct(fieldVal.Elem(), buildEnvKey(prefix, fieldTyp.Name))
			if updated {
				madeUpdate = true
			} else if wasNil {
				// nothing was overridden, keep the field unset
				fieldVal.Set(reflect.Zero(fieldVal.Type()))
			}

			if err != nil {
				return madeUpdate, err
			}
			continue
		}

		if fieldVal.Kind() == reflect.Struct {
			// embedded structs do not add their type name to the key
			keyPrefix := prefix
			if !fieldTyp.Anonymous {
				keyPrefix = buildEnvKey(prefix, fieldTyp.Name)
			}
			updated, err := processStruct(fieldVal, keyPrefix)
			if updated {
				madeUpdate = true
			}

			if err != nil {
				return madeUpdate, err
			}
			continue
		}

		envKey := buildEnvKey(prefix, fieldTyp.Name)
		envVal, found := os.LookupEnv(envKey)
		if !found {
			continue
		}

		if err := setField(fieldVal, envVal); err != nil {
			return madeUpdate, fmt.Errorf("error setting field %s from env var %s: %w", fieldTyp.Name, envKey, err)
		}

		madeUpdate = true
	}

	return madeUpdate, nil
}

func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// time.Duration is an int64
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			intVal, err := strconv.ParseInt(value, 10, field.Type().Bits())
			if err != nil {
				return err
			}
			field.SetInt(intVal)
		}
	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolVal)
	case reflect.Float32, reflect.Float64:
		floatVal, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(floatVal)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported field type: %v", field.Kind())
		}
		field.Set(reflect.ValueOf(strings.Split(value, ",")))
	case reflect.Ptr:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return setField(field.Elem(), value)
	case reflect.Map:
		if field.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("unsupported map key type: %v", field.Type().Key().Kind())
		}
		var mapValue map[string]interface{}
		if err := json.Unmarshal([]byte(value), &mapValue); err != nil {
			return fmt.Errorf("failed to parse map value as JSON: %w", err)
		}
		field.Set(reflect.ValueOf(mapValue))
	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

func buildEnvKey(prefix, name string) string {
	if prefix == "" {
		return strings.ToUpper(name)
	}

	return strings.ToUpper(fmt.Sprintf("%s_%s", prefix, name))
}
