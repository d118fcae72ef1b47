package integrity

import "testing"

func TestNewKeyringValidation(t *testing.T) {
	if _, err := NewKeyring(nil, "v1"); err == nil {
		t.Fatal("expected error for missing keys")
	}
	if _, err := NewKeyring(map[string][]byte{"v1": []byte("secret")}, ""); err == nil {
		t.Fatal("expected error for missing active key id")
	}
	if _, err := NewKeyring(map[string][]byte{"v1": []byte("secret")}, "v2"); err == nil {
		t.Fatal("expected error for unknown active key id")
	}
}

func TestKeyringSignAndVerify(t *testing.T) {
	ring, err := NewKeyring(map[string][]byte{"v1": []byte("secret")}, "v1")
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}
	sig, keyID, err := ring.SignChainHash("save_a", "chainhash")
	if err != nil {
		t.Fatalf("sign chain hash: %v", err)
	}
	if keyID != "v1" {
		t.Fatalf("expected key id v1, got %s", keyID)
	}
	if err := ring.VerifyChainHash("save_a", "chainhash", sig, keyID); err != nil {
		t.Fatalf("verify chain hash: %v", err)
	}
}

func TestKeyringVerifyFailures(t *testing.T) {
	ring, err := NewKeyring(map[string][]byte{"v1": []byte("secret")}, "v1")
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}
	sig, _, err := ring.SignChainHash("save_a", "chainhash")
	if err != nil {
		t.Fatalf("sign chain hash: %v", err)
	}

	if err := ring.VerifyChainHash("save_a", "chainhash", sig, ""); err == nil {
		t.Fatal("expected error for missing key id")
	}
	if err := ring.VerifyChainHash("save_a", "chainhash", sig, "unknown"); err == nil {
		t.Fatal("expected error for unknown key id")
	}
	if err := ring.VerifyChainHash("save_a", "chainhash", "bad", "v1"); err == nil {
		t.Fatal("expected error for signature mismatch")
	}
	if err := ring.VerifyChainHash("save_b", "chainhash", sig, "v1"); err == nil {
		t.Fatal("expected error for signature from another stream")
	}
	if _, _, err := ring.SignChainHash("", "chainhash"); err == nil {
		t.Fatal("expected error for empty stream id")
	}
}

func TestNilKeyring(t *testing.T) {
	var ring *Keyring
	if ring.ActiveKeyID() != "" {
		t.Fatal("expected empty key id")
	}
	if _, _, err := ring.SignChainHash("save_a", "x"); err == nil {
		t.Fatal("expected error signing with nil keyring")
	}
}
