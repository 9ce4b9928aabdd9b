package utils

import (
	"strings"
	"testing"
)

func TestValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Passw0rd!", true},
		{"Sh0rt!a", false},
		{"alllower0!", false},
		{"ALLUPPER0!", false},
		{"NoDigits!!", false},
		{"NoSpecial00", false},
		{"Under_sc0re", false},
		{"With space0A", false},
		{"Ünïcode0#X", true},
	}
	for _, tt := range tests {
		if got := ValidPassword(tt.password); got != tt.want {
			t.Errorf("ValidPassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Passw0rd!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("Passw0rd!", hash) {
		t.Error("expected password to match its hash")
	}
	if CheckPassword("wrong", hash) {
		t.Error("expected wrong password not to match")
	}
}

func TestNewTokenHashesRaw(t *testing.T) {
	raw, hashed, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if HashToken(raw) != hashed {
		t.Error("hash of raw token does not match returned hash")
	}
	if len(hashed) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(hashed))
	}
}

func TestGeneratePasswordIsValid(t *testing.T) {
	for i := 0; i < 20; i++ {
		pw, err := GeneratePassword()
		if err != nil {
			t.Fatalf("GeneratePassword: %v", err)
		}
		if !ValidPassword(pw) {
			t.Fatalf("generated password %q fails the password rule", pw)
		}
	}
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(6)
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if len(code) != 6 || strings.Trim(code, "0123456789") != "" {
		t.Errorf("unexpected code %q", code)
	}
}

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		code, number, want string
	}{
		{"+234", "08031234567", "2348031234567"},
		{"+44", "07700900123", "447700900123"},
		{"+1-876", "05551234", "8765551234"},
	}
	for _, tt := range tests {
		if got := FormatPhoneNumber(tt.code, tt.number); got != tt.want {
			t.Errorf("FormatPhoneNumber(%q, %q) = %q, want %q", tt.code, tt.number, got, tt.want)
		}
	}
}

func TestSlugifyAndInitials(t *testing.T) {
	if got := Slugify("Côte d'Ivoire"); got != "côte-d-ivoire" {
		t.Errorf("Slugify = %q", got)
	}
	if got := Initials("english premier league"); got != "EPL" {
		t.Errorf("Initials = %q", got)
	}
	if !strings.HasPrefix(GenerateID("usr"), "usr-") {
		t.Error("GenerateID missing prefix")
	}
}
