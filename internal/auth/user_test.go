package auth

import (
	"strings"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	// Cost 4 keeps bcrypt fast in tests.
	hash, err := HashPassword("correct-horse-battery", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("hash = %q, want a bcrypt hash", hash)
	}

	t.Run("accepts the original password", func(t *testing.T) {
		if !CheckPassword(hash, "correct-horse-battery") {
			t.Error("CheckPassword rejected the hashed password")
		}
	})
	t.Run("rejects a different password", func(t *testing.T) {
		if CheckPassword(hash, "incorrect-horse-battery") {
			t.Error("CheckPassword accepted the wrong password")
		}
	})
	t.Run("rejects a mangled hash", func(t *testing.T) {
		if CheckPassword("not-a-bcrypt-hash", "correct-horse-battery") {
			t.Error("CheckPassword accepted a non-hash")
		}
	})
	t.Run("salts are random", func(t *testing.T) {
		again, err := HashPassword("correct-horse-battery", 4)
		if err != nil {
			t.Fatalf("HashPassword: %v", err)
		}
		if again == hash {
			t.Error("two hashes of the same password are identical")
		}
	})
}

func TestHashPassword_ZeroCostUsesDefault(t *testing.T) {
	hash, err := HashPassword("testpassword", 0)
	if err != nil {
		t.Fatalf("HashPassword with default cost: %v", err)
	}
	if !CheckPassword(hash, "testpassword") {
		t.Error("default-cost hash does not verify")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"minimum length", "12345678", false},
		{"long passphrase", "a-very-secure-password", false},
		{"one short", "1234567", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestRoleValidity(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{RoleOperator, true},
		{RoleViewer, true},
		{Role("superuser"), false},
		{Role(""), false},
	}
	for _, tt := range tests {
		if got := ValidRoles[tt.role]; got != tt.want {
			t.Errorf("ValidRoles[%q] = %v, want %v", tt.role, got, tt.want)
		}
	}
}
