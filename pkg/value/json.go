package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"time"
)

// Parse decodes a single JSON document into a Value. Numbers keep their
// original text. Trailing data after the document is an error.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return Value{}, errors.New("value: trailing data after JSON document")
	}
	return fromDecoded(raw), nil
}

func fromDecoded(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(x)
	case json.Number:
		return Number(x)
	case string:
		return String(x)
	case []any:
		arr := make([]Value, len(x))
		for i, item := range x {
			arr[i] = fromDecoded(item)
		}
		return Value{kind: KindArray, arr: arr}
	case map[string]any:
		obj := make(map[string]Value, len(x))
		for k, item := range x {
			obj[k] = fromDecoded(item)
		}
		return Value{kind: KindObject, obj: obj}
	}
	// encoding/json with UseNumber produces only the types above.
	return Null()
}

// FromAny converts a Go value into a Value. time.Time becomes a temporal
// value; maps, slices and structs go through their JSON encoding, so struct
// tags decide the resulting keys.
func FromAny(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case time.Time:
		return Time(v), nil
	case *time.Time:
		if v == nil {
			return Null(), nil
		}
		return Time(*v), nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case json.Number:
		return Number(v), nil
	case int:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		return Number(json.Number(strconv.FormatUint(v, 10))), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case []any:
		arr := make([]Value, len(v))
		for i, item := range v {
			iv, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			arr[i] = iv
		}
		return Value{kind: KindArray, arr: arr}, nil
	case map[string]any:
		obj := make(map[string]Value, len(v))
		for k, item := range v {
			iv, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("field %q: %w", k, err)
			}
			obj[k] = iv
		}
		return Value{kind: KindObject, obj: obj}, nil
	}

	if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Null(), nil
	}
	data, err := json.Marshal(x)
	if err != nil {
		return Value{}, fmt.Errorf("encoding %T: %w", x, err)
	}
	return Parse(data)
}

// MarshalJSON implements json.Marshaler. Absent encodes as null, temporal
// values as RFC 3339 strings, and object keys in sorted order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindAbsent, KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(v.s)
	case KindString:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindTime:
		b, err := json.Marshal(v.t.Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := v.obj[k].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("value: cannot encode kind %s", v.kind)
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Decode stores v into the value pointed to by dst, following the usual
// encoding/json rules. Decoding Absent leaves dst untouched.
func (v Value) Decode(dst any) error {
	if v.kind == KindAbsent {
		return nil
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
