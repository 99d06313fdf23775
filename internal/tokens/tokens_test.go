package tokens

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-32-bytes-should-be-long-enough"

func TestMintAndVerify(t *testing.T) {
	tokenStr, err := Mint(testSecret, "user-123", 2*time.Minute)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	tok, err := NewVerifier(testSecret).Verify(context.Background(), tokenStr)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		t.Fatalf("Claims error: %v", err)
	}
	if claims[SubjectClaim] != "user-123" {
		t.Fatalf("unexpected %s claim: got=%v", SubjectClaim, claims[SubjectClaim])
	}
	exp, ok := claims["exp"].(float64)
	if !ok || int64(exp) <= time.Now().Unix() {
		t.Fatalf("exp claim missing or in the past: %v", claims["exp"])
	}
}

func TestClaimsIntoStruct(t *testing.T) {
	tokenStr, err := Mint(testSecret, "struct-user", time.Minute)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	tok, err := NewVerifier(testSecret).Verify(context.Background(), tokenStr)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	var got struct {
		UserID string `json:"user_id"`
	}
	if err := tok.Claims(&got); err != nil {
		t.Fatalf("Claims error: %v", err)
	}
	if got.UserID != "struct-user" {
		t.Fatalf("unexpected user id: %q", got.UserID)
	}
}

func TestMintRequiresSecret(t *testing.T) {
	if _, err := Mint("", "u", time.Minute); err == nil {
		t.Fatal("expected an error for an empty secret")
	}
}

func TestVerifyExpired(t *testing.T) {
	tokenStr, err := Mint(testSecret, "u2", -time.Minute)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	if _, err := NewVerifier(testSecret).Verify(context.Background(), tokenStr); err == nil {
		t.Fatal("expected verification to fail for an expired token")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	tokenStr, err := Mint(testSecret, "u3", 2*time.Minute)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	if _, err := NewVerifier("different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), tokenStr); err == nil {
		t.Fatal("expected verification to fail with the wrong secret")
	}
}

func TestVerifyMalformed(t *testing.T) {
	if _, err := NewVerifier(testSecret).Verify(context.Background(), "not.a.jwt"); err == nil {
		t.Fatal("expected verification to fail for a malformed token")
	}
}

// Unsigned tokens must never pass, whatever their payload says.
func TestVerifyAlgNoneRejected(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"user_id":"u-none","exp":9999999999}`))
	tok := header + "." + payload + "."
	if _, err := NewVerifier(testSecret).Verify(context.Background(), tok); err == nil {
		t.Fatal("expected verification to reject an alg=none token")
	}
}

// Changing the payload must break the signature.
func TestVerifyTamperedPayload(t *testing.T) {
	tokenStr, err := Mint(testSecret, "honest-user", 5*time.Minute)
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d parts", len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	tampered := strings.Replace(string(payload), "honest-user", "attacker", 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(tampered))
	if _, err := NewVerifier(testSecret).Verify(context.Background(), strings.Join(parts, ".")); err == nil {
		t.Fatal("expected signature verification to fail for a tampered token")
	}
}
