package wire

import "testing"

func TestParseRejectsMissingOrNonStringType(t *testing.T) {
	if _, ok := Parse([]byte(`{"x":1}`)); ok {
		t.Fatal("expected parse to fail without a type field")
	}

	if _, ok := Parse([]byte(`{"type":5}`)); ok {
		t.Fatal("expected parse to fail with a non-string type field")
	}

	if _, ok := Parse([]byte(`not json`)); ok {
		t.Fatal("expected parse to fail on invalid JSON")
	}
}

func TestParseStripsTypeFromPayload(t *testing.T) {
	m, ok := Parse([]byte(`{"type":"move","x":1,"y":2}`))

	if !ok {
		t.Fatal("expected parse to succeed")
	}

	if m.Type != "move" {
		t.Fatalf("expected type 'move', got %q", m.Type)
	}

	x, err := m.GetNumber("x")

	if err != nil || x != 1 {
		t.Fatalf("expected x == 1, got %v (err %v)", x, err)
	}

	if _, err := m.GetNumber("type"); err == nil {
		t.Fatal("expected type to be excluded from the payload")
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	m := New("move").Add("x", 1.5).Add("flipX", true)

	data, err := m.Encode()

	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	parsed, ok := Parse(data)

	if !ok {
		t.Fatal("expected re-parse of encoded message to succeed")
	}

	if parsed.Type != "move" {
		t.Fatalf("expected type 'move', got %q", parsed.Type)
	}

	x, _ := parsed.GetNumber("x")

	if x != 1.5 {
		t.Fatalf("expected x == 1.5, got %v", x)
	}

	flipX, _ := parsed.GetBool("flipX")

	if !flipX {
		t.Fatal("expected flipX == true")
	}
}

func TestEncodeRejectsPayloadTypeCollision(t *testing.T) {
	m := New("move").Add("type", "evil")

	if _, err := m.Encode(); err == nil {
		t.Fatal("expected encode to reject a payload that shadows 'type'")
	}
}

func TestGetNumberRejectsNonFiniteAndWrongType(t *testing.T) {
	m := New("move").Add("nan", math_NaN()).Add("str", "not a number")

	if _, err := m.GetNumber("nan"); err == nil {
		t.Fatal("expected NaN to be rejected")
	}

	if _, err := m.GetNumber("str"); err == nil {
		t.Fatal("expected a string value to be rejected")
	}

	if _, err := m.GetNumber("missing"); err == nil {
		t.Fatal("expected a missing key to error")
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1.0) {
		t.Fatal("expected 1.0 to be finite")
	}

	if IsFinite(math_NaN()) {
		t.Fatal("expected NaN to be non-finite")
	}

	var zero float64

	if IsFinite(1.0 / zero) {
		t.Fatal("expected +Inf to be non-finite")
	}
}

func math_NaN() float64 {
	var zero float64
	return zero / zero
}
