package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// applyEnv walks the config and overwrites every field whose `env` tag names a set variable.
// It reports all malformed variables at once and returns the names it applied.
func applyEnv(target interface{}, lookup func(string) (string, bool)) ([]string, error) {
	val := reflect.Indirect(reflect.ValueOf(target))
	if val.Kind() != reflect.Struct {
		return nil, nil
	}

	var applied []string
	var errs []error
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field, meta := val.Field(i), typ.Field(i)

		if field.Kind() == reflect.Struct {
			nested, err := applyEnv(field.Addr().Interface(), lookup)
			applied = append(applied, nested...)
			if err != nil {
				errs = append(errs, err)
			}
			continue
		}

		key := meta.Tag.Get("env")
		if key == "" {
			continue
		}
		raw, ok := lookup(key)
		if !ok {
			continue
		}
		if err := assign(field, raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		applied = append(applied, key)
	}
	return applied, errors.Join(errs...)
}

func assign(field reflect.Value, raw string) error {
	if !field.CanSet() {
		return errors.New("field is not settable")
	}
	raw = strings.TrimSpace(raw)

	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q", raw)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", raw)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", raw)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", field.Type().Elem().Kind())
		}
		field.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}

// splitList parses comma separated values such as SERVER_CORS_ORIGINS
func splitList(raw string) []string {
	items := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	_, err := applyEnv(config, os.LookupEnv)
	return err
}
