package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// envBinding ties one tagged leaf field of Config to its variable names.
// The env tag may list several names; the first one set to a non-empty value
// wins, so a project specific name can shadow a conventional one such as
// DATABASE_URL.
type envBinding struct {
	path  string
	names []string
	field reflect.Value
}

// loadFromEnv overlays environment variables onto cfg.
func loadFromEnv(cfg *Config) error {
	for _, b := range envBindings(reflect.ValueOf(cfg).Elem(), "") {
		name, raw, ok := b.lookup()
		if !ok {
			continue
		}
		if err := assign(b.field, raw); err != nil {
			return fmt.Errorf("%s (%s): %w", b.path, name, err)
		}
	}
	return nil
}

// envBindings walks v depth first and collects every field with an env tag.
func envBindings(v reflect.Value, path string) []envBinding {
	var out []envBinding
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := v.Field(i)
		fieldPath := sf.Name
		if path != "" {
			fieldPath = path + "." + sf.Name
		}
		if fv.Kind() == reflect.Struct {
			out = append(out, envBindings(fv, fieldPath)...)
			continue
		}
		tag := sf.Tag.Get("env")
		if tag == "" {
			continue
		}
		var names []string
		for _, n := range strings.Split(tag, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		out = append(out, envBinding{path: fieldPath, names: names, field: fv})
	}
	return out
}

func (b envBinding) lookup() (name, value string, ok bool) {
	for _, n := range b.names {
		if v, set := os.LookupEnv(n); set && v != "" {
			return n, v, true
		}
	}
	return "", "", false
}

var durationType = reflect.TypeOf(time.Duration(0))

// assign parses raw into field according to the field's type. Slices are
// comma separated; maps use key=value pairs separated by commas.
func assign(field reflect.Value, raw string) error {
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
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", raw)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", raw)
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float %q", raw)
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", field.Type().Elem().Kind())
		}
		parts := splitList(raw)
		s := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, p := range parts {
			s.Index(i).SetString(p)
		}
		field.Set(s)
	case reflect.Map:
		if field.Type().Key().Kind() != reflect.String || field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported map type %s", field.Type())
		}
		m := reflect.MakeMapWithSize(field.Type(), 4)
		for _, pair := range splitList(raw) {
			k, v, ok := strings.Cut(pair, "=")
			if !ok || k == "" {
				return fmt.Errorf("invalid map entry %q, want key=value", pair)
			}
			m.SetMapIndex(reflect.ValueOf(k).Convert(field.Type().Key()), reflect.ValueOf(v).Convert(field.Type().Elem()))
		}
		field.Set(m)
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}

// splitList splits a comma separated value and drops empty items.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
