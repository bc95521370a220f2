package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	sec := "secret123"
	wid := "browser"
	exp := time.Now().Add(5 * time.Minute).Unix()

	tok := GenerateWorkerToken(sec, wid, exp)

	gotWID, gotExp, err := ValidateWorkerToken(sec, tok, wid, time.Now(), 60)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if gotWID != wid || gotExp != exp {
		t.Fatalf("mismatch: %s/%d", gotWID, gotExp)
	}
}

func TestBadSignature(t *testing.T) {
	sec := "secret123"
	wid := "browser"
	exp := time.Now().Add(5 * time.Minute).Unix()
	tok := GenerateWorkerToken(sec, wid, exp)

	// flip a char
	if tok[0] == 'A' {
		tok = "B" + tok[1:]
	} else {
		tok = "A" + tok[1:]
	}

	if _, _, err := ValidateWorkerToken(sec, tok, wid, time.Now(), 60); err == nil {
		t.Fatalf("expected error for bad token")
	}
}

func TestWrongSecret(t *testing.T) {
	exp := time.Now().Add(time.Minute).Unix()
	tok := GenerateWorkerToken("secret-a", "browser", exp)
	if _, _, err := ValidateWorkerToken("secret-b", tok, "browser", time.Now(), 60); err != ErrTokenSig {
		t.Fatalf("expected ErrTokenSig, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	exp := time.Now().Add(-10 * time.Minute).Unix()
	tok := GenerateWorkerToken("secret123", "browser", exp)
	if _, _, err := ValidateWorkerToken("secret123", tok, "browser", time.Now(), 60); err != ErrTokenExp {
		t.Fatalf("expected ErrTokenExp, got %v", err)
	}
}

func TestWorkerIDMismatch(t *testing.T) {
	exp := time.Now().Add(time.Minute).Unix()
	tok := GenerateWorkerToken("secret123", "browser", exp)
	if _, _, err := ValidateWorkerToken("secret123", tok, "other", time.Now(), 60); err != ErrTokenWID {
		t.Fatalf("expected ErrTokenWID, got %v", err)
	}
}
