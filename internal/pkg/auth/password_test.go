package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Twoem@2024")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if hash == "Twoem@2024" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !CheckPassword(hash, "Twoem@2024") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Fatalf("expected non-matching password to fail")
	}
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("expected valid header, got %v", err)
	}
	if token != "abc.def.ghi" {
		t.Fatalf("unexpected token %q", token)
	}

	if _, err := ExtractBearerToken(""); err == nil {
		t.Fatalf("expected error for empty header")
	}
	if _, err := ExtractBearerToken("Basic abc"); err == nil {
		t.Fatalf("expected error for non-bearer scheme")
	}
}
