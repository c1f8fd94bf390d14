package auth

import (
	"testing"
	"time"

	"adhok_platform/internal/models/user"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("u-42", user.RoleTalent, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	sess, err := ParseToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if sess.UserId != "u-42" {
		t.Errorf("UserId = %q, want u-42", sess.UserId)
	}
	if sess.Role != user.RoleTalent {
		t.Errorf("Role = %q, want talent", sess.Role)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("u-42", user.RoleAdmin, "secret-a", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ParseToken(token, "secret-b"); err == nil {
		t.Error("expected error for wrong signing secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("u-42", user.RoleClient, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ParseToken(token, "secret"); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPassword("hunter2hunter2", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("wrong password accepted")
	}
}
