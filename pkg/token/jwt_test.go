package token

import (
	"testing"
)

func TestGenerateAndVerify(t *testing.T) {
	manager := NewJWTManager("test-secret", 1)

	tokenString, err := manager.GenerateToken("user_1", "pro", []string{"10_companion_limit"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := manager.VerifyToken(tokenString)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user_1" {
		t.Fatalf("expected user_1, got %s", claims.UserID)
	}
	if claims.Plan != "pro" {
		t.Fatalf("expected plan pro, got %s", claims.Plan)
	}
	if len(claims.Features) != 1 || claims.Features[0] != "10_companion_limit" {
		t.Fatalf("unexpected features %v", claims.Features)
	}
}

func TestVerify_WrongSecretRejected(t *testing.T) {
	issuer := NewJWTManager("secret-a", 1)
	verifier := NewJWTManager("secret-b", 1)

	tokenString, err := issuer.GenerateToken("user_1", "", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := verifier.VerifyToken(tokenString); err == nil {
		t.Fatal("expected verification to fail with wrong secret")
	}
}

func TestVerify_GarbageRejected(t *testing.T) {
	manager := NewJWTManager("test-secret", 1)

	if _, err := manager.VerifyToken("not-a-token"); err == nil {
		t.Fatal("expected verification to fail for malformed token")
	}
}

func TestEntitlementPredicates(t *testing.T) {
	claims := &SessionClaims{
		UserID:   "user_1",
		Plan:     "pro",
		Features: []string{"3_companion_limit"},
	}

	if !claims.HasPlan("pro") {
		t.Fatal("expected HasPlan(pro)")
	}
	if claims.HasPlan("core") {
		t.Fatal("unexpected HasPlan(core)")
	}
	if !claims.HasFeature("3_companion_limit") {
		t.Fatal("expected HasFeature(3_companion_limit)")
	}
	if claims.HasFeature("10_companion_limit") {
		t.Fatal("unexpected HasFeature(10_companion_limit)")
	}
}
