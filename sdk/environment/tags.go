package environment

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeFor[time.Duration]()

// ParseEnvTags fills the struct pointed to by cfg from environment variables.
// Fields opt in with an `env` tag; `default`, `required` and `separator` tags
// are honored. Keys are looked up as PREFIX_KEY when prefix is set. An empty
// variable counts as unset.
func ParseEnvTags(prefix string, cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return errors.New("cfg must be a pointer to a struct")
	}
	v = v.Elem()

	for _, sf := range reflect.VisibleFields(v.Type()) {
		tag, ok := sf.Tag.Lookup("env")
		if !ok || tag == "" || !sf.IsExported() {
			continue
		}

		key := GetEnvKeyPrefix(prefix, tag)
		value := os.Getenv(key)
		if value == "" {
			if sf.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", key)
			}
			value = sf.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		field := v.FieldByIndex(sf.Index)
		if !field.CanSet() {
			continue
		}
		if err := setField(field, value, sf.Tag.Get("separator")); err != nil {
			return fmt.Errorf("%s: field %s: %w", key, sf.Name, err)
		}
	}
	return nil
}

func setField(field reflect.Value, value, separator string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		if separator == "" {
			separator = ","
		}
		parts := strings.Split(value, separator)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))

	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}
