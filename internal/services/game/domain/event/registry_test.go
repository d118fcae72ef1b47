package event

import (
	"errors"
	"testing"
	"time"
)

func TestRegistryValidateForAppend_RequiresStreamID(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(Definition{Type: "GAME_STARTED"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := registry.ValidateForAppend(Event{Type: "GAME_STARTED"})
	if !errors.Is(err, ErrStreamIDRequired) {
		t.Fatalf("error = %v, want %v", err, ErrStreamIDRequired)
	}
}

func TestRegistryValidateForAppend_RejectsUnknownType(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.ValidateForAppend(Event{StreamID: "save-1", Type: "NOPE"})
	if !errors.Is(err, ErrTypeUnknown) {
		t.Fatalf("error = %v, want %v", err, ErrTypeUnknown)
	}
}

func TestRegistryValidateForAppend_RejectsInvalidPayload(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(Definition{Type: "FLAG_SET"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := registry.ValidateForAppend(Event{StreamID: "save-1", Type: "FLAG_SET", PayloadJSON: []byte(`{"flag":`)})
	if !errors.Is(err, ErrPayloadInvalid) {
		t.Fatalf("error = %v, want %v", err, ErrPayloadInvalid)
	}
}

func TestRegistryValidateForAppend_CanonicalizesPayload(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(Definition{Type: "FLAG_SET"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	evt, err := registry.ValidateForAppend(Event{
		StreamID:    " save-1 ",
		Type:        "FLAG_SET",
		PayloadJSON: []byte(`{ "value": true, "flag": "spared_pirates" }`),
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if evt.StreamID != "save-1" {
		t.Fatalf("stream id = %q, want trimmed", evt.StreamID)
	}
	if string(evt.PayloadJSON) != `{"flag":"spared_pirates","value":true}` {
		t.Fatalf("payload = %s", evt.PayloadJSON)
	}
}

func TestRegistryValidateForAppend_DefaultsEmptyPayload(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(Definition{Type: "FLEET_COMMITTED"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	evt, err := registry.ValidateForAppend(Event{StreamID: "save-1", Type: "FLEET_COMMITTED"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if string(evt.PayloadJSON) != "{}" {
		t.Fatalf("payload = %s, want {}", evt.PayloadJSON)
	}
}

func TestRegistryRegister_RejectsDuplicatesAndBadIntent(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(Definition{Type: "A", Intent: IntentAuditOnly}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(Definition{Type: "A"}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if err := registry.Register(Definition{Type: "B", Intent: "sometimes"}); err == nil {
		t.Fatal("expected invalid intent error")
	}
	if err := registry.Register(Definition{Type: "  "}); !errors.Is(err, ErrTypeRequired) {
		t.Fatalf("error = %v, want %v", err, ErrTypeRequired)
	}
}

func TestRegistryRegister_DefaultsToReplayIntent(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(Definition{Type: "CARD_GAINED"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	def, ok := registry.Definition("CARD_GAINED")
	if !ok {
		t.Fatal("expected definition")
	}
	if def.Intent != IntentReplay {
		t.Fatalf("intent = %s, want %s", def.Intent, IntentReplay)
	}
}

func TestRegistryListDefinitionsSorted(t *testing.T) {
	registry := NewRegistry()
	for _, typ := range []Type{"C", "A", "B"} {
		if err := registry.Register(Definition{Type: typ}); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	defs := registry.ListDefinitions()
	if len(defs) != 3 || defs[0].Type != "A" || defs[1].Type != "B" || defs[2].Type != "C" {
		t.Fatalf("definitions = %+v", defs)
	}
}

func TestEventHashDeterministicAndSensitive(t *testing.T) {
	evt := Event{
		StreamID:    "save-1",
		Type:        "FLAG_SET",
		Timestamp:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		PayloadJSON: []byte(`{"flag":"a","value":true}`),
	}
	first, err := EventHash(evt)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := EventHash(evt)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first != second {
		t.Fatalf("hash not deterministic: %s vs %s", first, second)
	}
	evt.PayloadJSON = []byte(`{"flag":"b","value":true}`)
	changed, err := EventHash(evt)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if changed == first {
		t.Fatal("expected hash to change with payload")
	}
}

func TestChainHashRequiresHashAndSeq(t *testing.T) {
	evt := Event{StreamID: "save-1", Seq: 1}
	if _, err := ChainHash(evt, ""); err == nil {
		t.Fatal("expected error without event hash")
	}
	evt.Hash = "abc"
	evt.Seq = 0
	if _, err := ChainHash(evt, ""); err == nil {
		t.Fatal("expected error without seq")
	}
	evt.Seq = 2
	first, err := ChainHash(evt, "prev")
	if err != nil {
		t.Fatalf("chain hash: %v", err)
	}
	second, err := ChainHash(evt, "other")
	if err != nil {
		t.Fatalf("chain hash: %v", err)
	}
	if first == second {
		t.Fatal("expected chain hash to depend on previous hash")
	}
}
