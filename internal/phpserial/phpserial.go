// Package phpserial encodes Go values in the textual format produced by PHP's
// serialize(). Only the subset needed to reproduce signed webhook payloads is
// supported: scalars, flat or nested associative arrays, and lists.
//
//	s:<byte length>:"<raw bytes>";
//	i:<integer>;
//	d:<float>;
//	b:<0|1>;
//	N;
//	a:<count>:{<key><value>...}
package phpserial

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// KV is a single entry of an OrderedMap.
type KV struct {
	Key   string
	Value any
}

// OrderedMap is an associative array whose entries serialize in slice order.
// It is the only way to control key order; plain maps are serialized with
// their keys sorted.
type OrderedMap []KV

// SortedFromMap builds an OrderedMap from m with keys in byte order.
func SortedFromMap(m map[string]any) OrderedMap {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	om := make(OrderedMap, 0, len(keys))
	for _, k := range keys {
		om = append(om, KV{Key: k, Value: m[k]})
	}
	return om
}

// UnsupportedTypeError is returned by Marshal for values with no PHP
// representation (functions, channels, structs, ...).
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type == nil {
		return "phpserial: unsupported type <nil>"
	}
	return "phpserial: unsupported type " + e.Type.String()
}

// Marshal returns the PHP serialize() encoding of v.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("N;")
	case string:
		writeString(buf, val)
	case bool:
		if val {
			buf.WriteString("b:1;")
		} else {
			buf.WriteString("b:0;")
		}
	case int:
		writeInt(buf, int64(val))
	case int8:
		writeInt(buf, int64(val))
	case int16:
		writeInt(buf, int64(val))
	case int32:
		writeInt(buf, int64(val))
	case int64:
		writeInt(buf, val)
	case uint:
		writeUint(buf, uint64(val))
	case uint8:
		writeUint(buf, uint64(val))
	case uint16:
		writeUint(buf, uint64(val))
	case uint32:
		writeUint(buf, uint64(val))
	case uint64:
		writeUint(buf, val)
	case float32:
		writeFloat(buf, float64(val))
	case float64:
		writeFloat(buf, val)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			writeInt(buf, n)
			return nil
		}
		f, err := val.Float64()
		if err != nil {
			return fmt.Errorf("phpserial: invalid json.Number %q: %w", val.String(), err)
		}
		writeFloat(buf, f)
	case OrderedMap:
		return encodeOrdered(buf, val)
	case map[string]any:
		return encodeOrdered(buf, SortedFromMap(val))
	case map[string]string:
		m := make(map[string]any, len(val))
		for k, s := range val {
			m[k] = s
		}
		return encodeOrdered(buf, SortedFromMap(m))
	case []any:
		return encodeList(buf, len(val), func(i int) any { return val[i] })
	case []string:
		return encodeList(buf, len(val), func(i int) any { return val[i] })
	default:
		return &UnsupportedTypeError{Type: reflect.TypeOf(v)}
	}
	return nil
}

func encodeOrdered(buf *bytes.Buffer, om OrderedMap) error {
	buf.WriteString("a:")
	buf.WriteString(strconv.Itoa(len(om)))
	buf.WriteString(":{")
	for _, kv := range om {
		writeKey(buf, kv.Key)
		if err := encode(buf, kv.Value); err != nil {
			return fmt.Errorf("phpserial: key %q: %w", kv.Key, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeList(buf *bytes.Buffer, n int, at func(int) any) error {
	buf.WriteString("a:")
	buf.WriteString(strconv.Itoa(n))
	buf.WriteString(":{")
	for i := 0; i < n; i++ {
		writeInt(buf, int64(i))
		if err := encode(buf, at(i)); err != nil {
			return fmt.Errorf("phpserial: index %d: %w", i, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeKey applies PHP's array key normalization: a key that is the
// canonical decimal form of an integer becomes an integer key.
func writeKey(buf *bytes.Buffer, key string) {
	if n, ok := canonicalIntKey(key); ok {
		writeInt(buf, n)
		return
	}
	writeString(buf, key)
}

func canonicalIntKey(key string) (int64, bool) {
	if key == "" || len(key) > 20 {
		return 0, false
	}
	n, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, false
	}
	// "007", "+7" and "-0" stay strings in PHP.
	if strconv.FormatInt(n, 10) != key {
		return 0, false
	}
	return n, true
}

// writeString emits the byte length, not the rune count.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteString("s:")
	buf.WriteString(strconv.Itoa(len(s)))
	buf.WriteString(`:"`)
	buf.WriteString(s)
	buf.WriteString(`";`)
}

func writeInt(buf *bytes.Buffer, n int64) {
	buf.WriteString("i:")
	buf.WriteString(strconv.FormatInt(n, 10))
	buf.WriteByte(';')
}

func writeUint(buf *bytes.Buffer, n uint64) {
	buf.WriteString("i:")
	buf.WriteString(strconv.FormatUint(n, 10))
	buf.WriteByte(';')
}

// writeFloat emits integral values as i: (payload numbers originate from
// JavaScript where 1 and 1.0 are the same value) and everything else as d:.
func writeFloat(buf *bytes.Buffer, f float64) {
	switch {
	case math.IsNaN(f):
		buf.WriteString("d:NAN;")
		return
	case math.IsInf(f, 1):
		buf.WriteString("d:INF;")
		return
	case math.IsInf(f, -1):
		buf.WriteString("d:-INF;")
		return
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		writeInt(buf, int64(f))
		return
	}
	buf.WriteString("d:")
	abs := math.Abs(f)
	if abs >= 1e-7 && abs < 1e21 {
		buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
	} else {
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	buf.WriteByte(';')
}
