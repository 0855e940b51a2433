package sandbox

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"
)

func TestEncodeCircular(t *testing.T) {
	type node struct {
		Name string `json:"name"`
		Next *node  `json:"next"`
	}
	n := &node{Name: "a"}
	n.Next = n

	out := Encode(n)
	if !strings.Contains(out, `"[Circular]"`) {
		t.Errorf("Expected [Circular] marker, got %s", out)
	}

	// Must stay valid JSON.
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Cyclic encode produced invalid JSON: %v", err)
	}
	if decoded["next"] != "[Circular]" {
		t.Errorf("Cycle edge not marked: %v", decoded)
	}
}

func TestEncodeCircularMap(t *testing.T) {
	m := map[string]interface{}{"name": "self"}
	m["me"] = m

	out := Encode(m)
	if !strings.Contains(out, `"[Circular]"`) {
		t.Errorf("Expected [Circular] marker, got %s", out)
	}
}

func TestEncodeBigInt(t *testing.T) {
	v, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	out := Encode(map[string]interface{}{"big": v})

	if !strings.Contains(out, `"123456789012345678901234567890n"`) {
		t.Errorf("Expected decimal string with trailing marker, got %s", out)
	}
}

func TestEncodeFunction(t *testing.T) {
	out := Encode(map[string]interface{}{"fn": TestEncodeFunction})
	if !strings.Contains(out, `"[Function TestEncodeFunction]"`) {
		t.Errorf("Expected function placeholder, got %s", out)
	}
}

func TestEncodePrimitives(t *testing.T) {
	out := Encode(map[string]interface{}{
		"s": "text",
		"i": 42,
		"f": 1.5,
		"b": true,
		"n": nil,
	})

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if decoded["s"] != "text" || decoded["i"] != 42.0 || decoded["b"] != true {
		t.Errorf("Primitives mangled: %v", decoded)
	}
}

func TestClampBoundary(t *testing.T) {
	payload := strings.Repeat("x", 5000)
	out := Clamp(payload, 4000)

	var decoded struct {
		Truncated bool   `json:"truncated"`
		Length    int    `json:"length"`
		Preview   string `json:"preview"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Clamp produced invalid JSON: %v", err)
	}

	if !decoded.Truncated {
		t.Error("Expected truncated=true")
	}
	if decoded.Length != 5000 {
		t.Errorf("Expected original length 5000, got %d", decoded.Length)
	}
	if decoded.Preview != strings.Repeat("x", 4000)+"…" {
		t.Errorf("Preview must be first 4000 chars plus ellipsis, got %d chars", len(decoded.Preview))
	}
}

func TestClampUnderLimit(t *testing.T) {
	payload := `{"result":2,"logs":[]}`
	if out := Clamp(payload, 4000); out != payload {
		t.Errorf("Payload under the cap must pass through, got %s", out)
	}
}
