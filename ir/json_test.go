package ir

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarshalJSON(t *testing.T) {
	d := Ptr(Generic(Nested(Named("Acme", "Outer").In("Acme"), "Box`1"), Array(GenericParam("T", 0), 2)))

	got, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"kind":"pointer","element":{"kind":"generic","type":{"kind":"named","name":"Box` + "`" + `1",` +
		`"declaringType":{"kind":"named","name":"Outer","namespace":"Acme","assembly":"Acme"}},` +
		`"args":[{"kind":"array","element":{"kind":"genericParameter","name":"T"},"rank":2}]}}`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("Marshal() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeJSON(t *testing.T) {
	original := Generic(Dictionary(), String(), SZArray(Named("Acme", "Foo").In("Acme")))
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	got, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if !Equal(original, got) {
		t.Errorf("DecodeJSON() = %s, not equal to original", data)
	}
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"null", `null`, "descriptor is null"},
		{"missing kind", `{"name":"X"}`, `missing "kind"`},
		{"unknown kind", `{"kind":"union"}`, `unknown descriptor kind "union"`},
		{"unknown field", `{"kind":"named","name":"X","extra":1}`, "unknown field"},
		{"generic without type", `{"kind":"generic","args":[{"kind":"named","name":"X"}]}`, `requires "type"`},
		{"generic type not named", `{"kind":"generic","type":{"kind":"pointer"}}`, `expected "named"`},
		{"pointer without element", `{"kind":"pointer"}`, "pointer element"},
		{"malformed", `{"kind":`, "unexpected EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(tt.input))
			if err == nil {
				t.Fatal("DecodeJSON() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("DecodeJSON() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestMarshalJSON_NilElement(t *testing.T) {
	if _, err := json.Marshal(Ptr(nil)); err == nil {
		t.Error("Marshal() of a pointer with no element should fail")
	}
}

func TestValue(t *testing.T) {
	type request struct {
		Type Value  `json:"type"`
		Mode string `json:"mode"`
	}

	in := request{Type: Value{Type: Array(Int32(), 3)}, Mode: "fullname"}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out request
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !Equal(in.Type.Type, out.Type.Type) {
		t.Errorf("Value round trip lost the descriptor: %s", data)
	}

	var empty request
	if err := json.Unmarshal([]byte(`{"type":null}`), &empty); err != nil {
		t.Fatalf("Unmarshal(null) error = %v", err)
	}
	if empty.Type.Type != nil {
		t.Errorf("null decoded to %v, want nil", empty.Type.Type)
	}
}

func TestMsgpack(t *testing.T) {
	original := ByRef(Generic(List(), Array(Nested(Named("Acme", "Outer").In("Acme"), "Inner"), 4)))

	var buf bytes.Buffer
	if err := EncodeMsgpack(&buf, original); err != nil {
		t.Fatalf("EncodeMsgpack() error = %v", err)
	}
	got, err := DecodeMsgpack(&buf)
	if err != nil {
		t.Fatalf("DecodeMsgpack() error = %v", err)
	}
	if !Equal(original, got) {
		t.Error("msgpack round trip is not equal to the original")
	}
}

func TestMsgpack_NegativeRank(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeMsgpack(&buf, Array(Int32(), -1)); err == nil {
		t.Error("EncodeMsgpack() of a negative rank should fail")
	}
}
