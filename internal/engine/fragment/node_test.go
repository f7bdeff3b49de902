package fragment

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		kind    Kind
		wantErr bool
	}{
		{`{"a":1}`, KindObject, false},
		{`[1,"x",true,null]`, KindArray, false},
		{`"str"`, KindScalar, false},
		{`12.5`, KindScalar, false},
		{`null`, KindAbsent, false},
		{`  {"a":1}  `, KindObject, false},
		{`{"a":1}{"b":2}`, KindAbsent, true},
		{`{a:1}`, KindAbsent, true},
		{``, KindAbsent, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := Parse([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if n.Kind() != tt.kind {
				t.Errorf("Parse(%q).Kind() = %s, want %s", tt.in, n.Kind(), tt.kind)
			}
		})
	}
}

func TestNodeAccessors(t *testing.T) {
	n, err := Parse([]byte(`{"s":"v","n":3,"b":false,"arr":[{"k":"x"}],"obj":{"inner":{"deep":"d"}}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if s, ok := n.Field("s").Str(); !ok || s != "v" {
		t.Errorf("Field(s).Str() = %q, %v", s, ok)
	}
	if num, ok := n.Field("n").Num(); !ok || num != json.Number("3") {
		t.Errorf("Field(n).Num() = %q, %v", num, ok)
	}
	if b, ok := n.Field("b").Boolean(); !ok || b {
		t.Errorf("Field(b).Boolean() = %v, %v", b, ok)
	}
	if _, ok := n.Field("n").Str(); ok {
		t.Error("number node must not report a string")
	}
	if got := n.Field("arr").Index(0).Field("k"); got.Kind() != KindScalar {
		t.Errorf("arr[0].k kind = %s", got.Kind())
	}
	if got := n.Field("arr").Index(5); !got.IsAbsent() {
		t.Error("out of range index must be absent")
	}
	if d, _ := n.Lookup("obj", "inner", "deep").Str(); d != "d" {
		t.Errorf("Lookup(obj.inner.deep) = %q", d)
	}
	if got := n.Lookup("arr", "k"); !got.IsAbsent() {
		t.Error("Lookup must not fan out over arrays")
	}
	if got := n.Field("s").Field("x"); !got.IsAbsent() {
		t.Error("Field on scalar must be absent")
	}
}

func TestNodeMarshalRoundTrip(t *testing.T) {
	const doc = `{"a":[1,"two",true],"b":{"c":"d"}}`
	n, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse(marshalled): %v", err)
	}
	if !n.Equal(back) {
		t.Errorf("round trip mismatch: %s", out)
	}
}
