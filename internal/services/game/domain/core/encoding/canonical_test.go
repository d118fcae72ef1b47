package encoding

import "testing"

func TestCanonicalJSONSortsKeys(t *testing.T) {
	got, err := CanonicalJSON(map[string]any{"b": 1, "a": map[string]any{"d": true, "c": "x"}})
	if err != nil {
		t.Fatalf("canonical json: %v", err)
	}
	want := `{"a":{"c":"x","d":true},"b":1}`
	if string(got) != want {
		t.Fatalf("canonical json = %s, want %s", got, want)
	}
}

func TestCanonicalJSONKeepsHTMLCharacters(t *testing.T) {
	got, err := CanonicalJSON(map[string]string{"text": "<fleet> & co"})
	if err != nil {
		t.Fatalf("canonical json: %v", err)
	}
	if string(got) != `{"text":"<fleet> & co"}` {
		t.Fatalf("canonical json = %s", got)
	}
}

func TestCanonicalRawNormalizesWhitespaceAndOrder(t *testing.T) {
	got, err := CanonicalRaw([]byte("{ \"z\": 1,\n \"a\": [3, 2, 1] }"))
	if err != nil {
		t.Fatalf("canonical raw: %v", err)
	}
	if string(got) != `{"a":[3,2,1],"z":1}` {
		t.Fatalf("canonical raw = %s", got)
	}
}

func TestCanonicalRawPreservesLargeIntegers(t *testing.T) {
	got, err := CanonicalRaw([]byte(`{"seed":9007199254740993}`))
	if err != nil {
		t.Fatalf("canonical raw: %v", err)
	}
	if string(got) != `{"seed":9007199254740993}` {
		t.Fatalf("canonical raw = %s", got)
	}
}

func TestCanonicalRawRejectsInvalidJSON(t *testing.T) {
	if _, err := CanonicalRaw([]byte(`{"a":`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestContentHashStableAcrossKeyOrder(t *testing.T) {
	first, err := ContentHash(map[string]int{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := ContentHash(map[string]any{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first != second {
		t.Fatalf("hashes differ: %s vs %s", first, second)
	}
	if len(first) != 32 {
		t.Fatalf("hash length = %d, want 32", len(first))
	}
}
