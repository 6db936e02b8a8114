package entity

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/tailored-agentic-units/entity/plugin"
)

// normalizeMetadata accepts nil, any map keyed by strings, or a struct
// (or non-nil pointer to one), and returns a private copy as Metadata.
// Struct fields are copied with their Go types intact; json tags decide
// the keys.
func normalizeMetadata(meta any) (plugin.Metadata, error) {
	switch m := meta.(type) {
	case nil:
		return plugin.Metadata{}, nil
	case plugin.Metadata:
		return m.Clone(), nil
	case map[string]any:
		return plugin.Metadata(m).Clone(), nil
	}

	v := reflect.ValueOf(meta)
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map keyed by %s", ErrInvalidMetadata, v.Type().Key())
		}
		out := make(plugin.Metadata, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	case reflect.Pointer:
		if v.IsNil() || v.Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("%w: got %T", ErrInvalidMetadata, meta)
		}
		return structMetadata(meta), nil
	case reflect.Struct:
		return structMetadata(meta), nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidMetadata, meta)
	}
}

func structMetadata(meta any) plugin.Metadata {
	out := plugin.Metadata{}
	flattenStruct(reflect.Indirect(reflect.ValueOf(meta)), out)
	return out
}

// flattenStruct copies exported fields into out under their json names,
// keeping the field values as they are. Untagged embedded structs are
// promoted the way encoding/json promotes them; "-" and empty omitempty
// fields are skipped.
func flattenStruct(v reflect.Value, out plugin.Metadata) {
	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		name, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" && opts == "" {
			continue
		}

		fv := v.Field(i)
		if !fv.CanInterface() && !(field.Anonymous && fv.Kind() == reflect.Struct) {
			continue
		}
		if field.Anonymous && name == "" {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				flattenStruct(fv, out)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			continue
		}
		if _, taken := out[name]; taken {
			continue
		}
		out[name] = fv.Interface()
	}
}
