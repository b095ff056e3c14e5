package value

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseKinds(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{`null`, KindNull},
		{`true`, KindBool},
		{`10.5`, KindNumber},
		{`"abc"`, KindString},
		{`[1,2]`, KindArray},
		{`{"a":1}`, KindObject},
	}
	for _, tt := range tests {
		v, err := Parse([]byte(tt.in))
		if err != nil {
			t.Fatalf("Parse(%s) error: %v", tt.in, err)
		}
		if v.Kind() != tt.kind {
			t.Errorf("Parse(%s).Kind() = %s, want %s", tt.in, v.Kind(), tt.kind)
		}
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	if _, err := Parse([]byte(`{"a":1} {"b":2}`)); err == nil {
		t.Fatal("expected error for trailing data")
	}
	if _, err := Parse([]byte(`{"a":`)); err == nil {
		t.Fatal("expected error for truncated document")
	}
}

func TestNumberTextPreserved(t *testing.T) {
	v, err := Parse([]byte(`{"big":12345678901234567890,"f":10.50}`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	big, _ := v.Get("big")
	if n, _ := big.NumberText(); n != "12345678901234567890" {
		t.Errorf("big = %s, want 12345678901234567890", n)
	}
	f, _ := v.Get("f")
	if n, _ := f.NumberText(); n != "10.50" {
		t.Errorf("f = %s, want 10.50", n)
	}
	if got, ok := f.Float64(); !ok || got != 10.5 {
		t.Errorf("f.Float64() = %v, %v", got, ok)
	}
}

func TestInt64(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"200", 200, true},
		{"200.0", 200, true},
		{"2e2", 200, true},
		{"1.5", 0, false},
		{"9223372036854775807", 9223372036854775807, true},
		{"9223372036854775808", 0, false},
		{"9.223372036854775808e18", 0, false},
		{"-9223372036854775808", -9223372036854775808, true},
	}
	for _, tt := range tests {
		got, ok := Number(json.Number(tt.in)).Int64()
		if got != tt.want || ok != tt.ok {
			t.Errorf("Int64(%s) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if _, ok := String("200").Int64(); ok {
		t.Error("string value should not convert to int")
	}
}

func TestZeroValueIsAbsent(t *testing.T) {
	var v Value
	if !v.IsAbsent() {
		t.Fatal("zero Value should be absent")
	}
	if Equal(v, Null()) {
		t.Error("absent should differ from null")
	}
	if Equal(v, Object(nil)) {
		t.Error("absent should differ from an empty object")
	}
}

func TestEqualIgnoresKeyOrder(t *testing.T) {
	a, _ := Parse([]byte(`{"x":1,"y":[true,null],"z":{"k":"v"}}`))
	b, _ := Parse([]byte(`{"z":{"k":"v"},"y":[true,null],"x":1.0}`))
	if !Equal(a, b) {
		t.Errorf("expected %s == %s", a, b)
	}
	c, _ := Parse([]byte(`{"x":1,"y":[null,true],"z":{"k":"v"}}`))
	if Equal(a, c) {
		t.Error("array order must matter")
	}
}

func TestConstructorsCopyInput(t *testing.T) {
	fields := map[string]Value{"a": Int(1)}
	obj := Object(fields)
	fields["b"] = Int(2)
	if obj.Len() != 1 {
		t.Errorf("Object aliased its input map: len = %d", obj.Len())
	}

	items := []Value{Int(1), Int(2)}
	arr := Array(items...)
	items[0] = String("changed")
	if !Equal(arr.Index(0), Int(1)) {
		t.Errorf("Array aliased its input slice: %s", arr)
	}

	got := obj.Fields()
	got["c"] = Int(3)
	if _, ok := obj.Get("c"); ok {
		t.Error("Fields returned the internal map")
	}
}

func TestFromAny(t *testing.T) {
	type order struct {
		Symbol   string  `json:"symbol"`
		AvgCost  float64 `json:"avgCost"`
		Quantity int     `json:"quantity"`
	}
	ts := time.Date(2025, 3, 1, 9, 45, 0, 0, time.UTC)

	v, err := FromAny(map[string]any{
		"order": order{Symbol: "600519", AvgCost: 1650, Quantity: 100},
		"at":    ts,
		"tags":  []any{"a", 1, nil},
	})
	if err != nil {
		t.Fatalf("FromAny error: %v", err)
	}

	at, _ := v.Get("at")
	if got, ok := at.TimeValue(); !ok || !got.Equal(ts) {
		t.Errorf("at = %s, want time %v", at, ts)
	}

	o, _ := v.Get("order")
	want, _ := Parse([]byte(`{"symbol":"600519","avgCost":1650,"quantity":100}`))
	if !Equal(o, want) {
		t.Errorf("order = %s, want %s", o, want)
	}

	tags, _ := v.Get("tags")
	if tags.Len() != 3 || !tags.Index(2).IsNull() {
		t.Errorf("tags = %s", tags)
	}

	var nilPtr *order
	if n, err := FromAny(nilPtr); err != nil || !n.IsNull() {
		t.Errorf("FromAny(nil pointer) = %s, %v", n, err)
	}
}

func TestMarshalJSON(t *testing.T) {
	ts := time.Date(2025, 1, 15, 14, 20, 0, 0, time.UTC)
	v := Object(map[string]Value{
		"b":    Array(Int(1), Float(2.5), Bool(false)),
		"a":    String("x"),
		"t":    Time(ts),
		"none": Value{},
	})
	got, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"a":"x","b":[1,2.5,false],"none":null,"t":"2025-01-15T14:20:00Z"}`
	if string(got) != want {
		t.Errorf("Marshal = %s\nwant      %s", got, want)
	}
}

func TestDecodeIntoStruct(t *testing.T) {
	v, _ := Parse([]byte(`{"symbol":"000001","price":12.8,"items":[{"avgCost":10.5}]}`))
	var dst struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
		Items  []struct {
			AvgCost float64 `json:"avgCost"`
		} `json:"items"`
	}
	if err := v.Decode(&dst); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if dst.Symbol != "000001" || dst.Price != 12.8 || len(dst.Items) != 1 || dst.Items[0].AvgCost != 10.5 {
		t.Errorf("Decode = %+v", dst)
	}

	dst.Symbol = "keep"
	if err := (Value{}).Decode(&dst); err != nil || dst.Symbol != "keep" {
		t.Errorf("decoding absent should be a no-op, got %q, %v", dst.Symbol, err)
	}
}

func TestUnmarshalEmbedded(t *testing.T) {
	var env struct {
		Data Value `json:"data"`
	}
	if err := json.Unmarshal([]byte(`{"data":{"k":[1]}}`), &env); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if env.Data.Kind() != KindObject {
		t.Errorf("Data.Kind() = %s, want object", env.Data.Kind())
	}
}

func TestFloatNaNBecomesNull(t *testing.T) {
	zero := 0.0
	if v := Float(zero / zero); !v.IsNull() {
		t.Errorf("Float(NaN) = %s, want null", v)
	}
}
