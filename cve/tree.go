package cve

import (
	"encoding/json"
)

// object is a JSON object read from a generic tree. A nil object behaves as
// an empty one, so chained lookups never need existence checks.
type object map[string]any

func asObject(v any) (object, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case object:
		return o, true
	}
	return nil, false
}

// object returns the nested object under key, or nil when it is absent or not
// an object.
func (o object) object(key string) object {
	child, _ := asObject(o[key])
	return child
}

func (o object) objects(key string) []object {
	items, _ := o[key].([]any)
	var objs []object
	for _, item := range items {
		if child, ok := asObject(item); ok {
			objs = append(objs, child)
		}
	}
	return objs
}

func (o object) str(key string) string {
	s, _ := o[key].(string)
	return s
}

func (o object) number(key string) *float64 {
	var f float64
	switch n := o[key].(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

// strings collects every string-valued member.
func (o object) strings() map[string]string {
	fields := map[string]string{}
	for k, v := range o {
		if s, ok := v.(string); ok {
			fields[k] = s
		}
	}
	return fields
}
