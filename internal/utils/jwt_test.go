package utils

import (
	"testing"
	"time"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT("coach1", "operator", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}

	userID, role, err := ValidateJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateJWT returned error: %v", err)
	}
	if userID != "coach1" {
		t.Errorf("expected user id coach1, got %s", userID)
	}
	if role != "operator" {
		t.Errorf("expected role operator, got %s", role)
	}
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT("coach1", "operator", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}

	if _, _, err := ValidateJWT(token, "other-secret"); err == nil {
		t.Fatal("expected error validating token with wrong secret")
	}
}

func TestValidateJWT_Expired(t *testing.T) {
	token, err := GenerateJWT("coach1", "operator", "test-secret", -time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}

	if _, _, err := ValidateJWT(token, "test-secret"); err == nil {
		t.Fatal("expected error validating expired token")
	}
}
