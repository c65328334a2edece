package entity

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueType tags the variant held by a Value.
type ValueType uint8

const (
	TypeNull ValueType = iota
	TypeString
	TypeNumber
	TypeBool
	TypeList
	TypeMap
)

// Value is a loosely typed property value: null, string, number, bool,
// ordered list or nested map. The zero Value is null.
type Value struct {
	typ  ValueType
	str  string
	num  float64
	flag bool
	list []Value
	m    Map
}

// Map is a property bag keyed by field name.
type Map map[string]Value

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps a string.
func String(s string) Value { return Value{typ: TypeString, str: s} }

// Number wraps a float.
func Number(f float64) Value { return Value{typ: TypeNumber, num: f} }

// Int wraps an integer.
func Int(n int) Value { return Value{typ: TypeNumber, num: float64(n)} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{typ: TypeBool, flag: b} }

// List wraps an ordered list of values. A nil slice yields an empty list.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{typ: TypeList, list: items}
}

// Strings builds a list value from strings.
func Strings(items []string) Value {
	out := make([]Value, 0, len(items))
	for _, s := range items {
		out = append(out, String(s))
	}
	return List(out...)
}

// MapOf wraps a map. A nil map yields an empty map.
func MapOf(m Map) Value {
	if m == nil {
		m = Map{}
	}
	return Value{typ: TypeMap, m: m}
}

// Type returns the variant tag.
func (v Value) Type() ValueType { return v.typ }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.typ == TypeNull }

// Str returns the string payload.
func (v Value) Str() (string, bool) {
	return v.str, v.typ == TypeString
}

// Num returns the number payload.
func (v Value) Num() (float64, bool) {
	return v.num, v.typ == TypeNumber
}

// AsInt returns the number payload truncated to int. Numeric strings are
// accepted as well, matching what the web service sometimes sends.
func (v Value) AsInt() (int, bool) {
	switch v.typ {
	case TypeNumber:
		return int(v.num), true
	case TypeString:
		n, err := strconv.Atoi(strings.TrimSpace(v.str))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Boolean returns the bool payload.
func (v Value) Boolean() (bool, bool) {
	return v.flag, v.typ == TypeBool
}

// Items returns the list payload.
func (v Value) Items() ([]Value, bool) {
	return v.list, v.typ == TypeList
}

// Fields returns the map payload.
func (v Value) Fields() (Map, bool) {
	return v.m, v.typ == TypeMap
}

// IsEmpty reports whether v is null, an empty string, an empty list or an
// empty map. Numbers and booleans are never empty.
func (v Value) IsEmpty() bool {
	switch v.typ {
	case TypeNull:
		return true
	case TypeString:
		return v.str == ""
	case TypeList:
		return len(v.list) == 0
	case TypeMap:
		return len(v.m) == 0
	default:
		return false
	}
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeNull:
		return true
	case TypeString:
		return v.str == o.str
	case TypeNumber:
		return v.num == o.num
	case TypeBool:
		return v.flag == o.flag
	case TypeList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case TypeMap:
		return v.m.Equal(o.m)
	}
	return false
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	switch v.typ {
	case TypeList:
		out := make([]Value, len(v.list))
		for i, item := range v.list {
			out[i] = item.Clone()
		}
		return Value{typ: TypeList, list: out}
	case TypeMap:
		return Value{typ: TypeMap, m: v.m.Clone()}
	default:
		return v
	}
}

// Display renders v for a detail pane: lists are comma-joined, maps are
// rendered as key: value pairs sorted by key.
func (v Value) Display() string {
	switch v.typ {
	case TypeNull:
		return ""
	case TypeString:
		return v.str
	case TypeNumber:
		return formatNumber(v.num)
	case TypeBool:
		return strconv.FormatBool(v.flag)
	case TypeList:
		parts := make([]string, 0, len(v.list))
		for _, item := range v.list {
			if s := item.Display(); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case TypeMap:
		// Named sub-entities read best as their name.
		if name := v.m.Str("name"); name != "" {
			return name
		}
		if title := v.m.Str("title"); title != "" {
			return title
		}
		keys := v.m.Keys()
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := v.m[k].Display(); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FromAny converts a value produced by encoding/json into a Value.
// Unsupported types become null.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case string:
		return String(t)
	case float64:
		return Number(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case int:
		return Int(t)
	case bool:
		return Bool(t)
	case []any:
		out := make([]Value, 0, len(t))
		for _, item := range t {
			out = append(out, FromAny(item))
		}
		return List(out...)
	case map[string]any:
		return MapOf(MapFromAny(t))
	case Value:
		return t
	default:
		return Null()
	}
}

// MapFromAny converts a decoded JSON object into a Map.
func MapFromAny(obj map[string]any) Map {
	m := make(Map, len(obj))
	for k, x := range obj {
		m[k] = FromAny(x)
	}
	return m
}

// Any converts v back into plain Go values (the inverse of FromAny).
func (v Value) Any() any {
	switch v.typ {
	case TypeString:
		return v.str
	case TypeNumber:
		return v.num
	case TypeBool:
		return v.flag
	case TypeList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Any()
		}
		return out
	case TypeMap:
		return v.m.Any()
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var x any
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	*v = FromAny(x)
	return nil
}

// Get returns the value at key, or null.
func (m Map) Get(key string) Value {
	return m[key]
}

// Has reports whether key is present.
func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Str returns the string at key, or "" when absent or not a string.
func (m Map) Str(key string) string {
	s, _ := m[key].Str()
	return s
}

// Int returns the integer at key.
func (m Map) Int(key string) (int, bool) {
	return m[key].AsInt()
}

// Sub returns the nested map at key.
func (m Map) Sub(key string) (Map, bool) {
	return m[key].Fields()
}

// Keys returns the keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

// Equal reports deep equality.
func (m Map) Equal(o Map) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Any converts the map into plain Go values.
func (m Map) Any() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Any()
	}
	return out
}
