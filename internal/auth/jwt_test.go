package auth

import (
	"testing"
	"time"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateToken("u-budi", "Budi Santoso", "TEACHER")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "u-budi" || claims.Name != "Budi Santoso" || claims.Role != "TEACHER" {
		t.Fatalf("claims mangled: %+v", claims)
	}
}

func TestManager_RejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).GenerateToken("u1", "N", "ADMIN")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewManager("secret-b", time.Hour).VerifyToken(token); err == nil {
		t.Fatalf("token verified with wrong secret")
	}
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.GenerateToken("u1", "N", "ADMIN")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m.VerifyToken(token); err == nil {
		t.Fatalf("expired token verified")
	}
}
