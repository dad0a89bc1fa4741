package utils

import "testing"

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name    string
		pw      string
		wantErr bool
	}{
		{"too short", "Ab1defg", true},
		{"no uppercase", "abcdefg1", true},
		{"no lowercase", "ABCDEFG1", true},
		{"no digit", "Abcdefgh", true},
		{"valid", "Abcdefg1", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.pw)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error for %q, got nil", tc.pw)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.pw, err)
			}
		})
	}
}

func TestValidateRosterName(t *testing.T) {
	if err := ValidateRosterName("A"); err == nil {
		t.Fatal("expected error for single-character name")
	}
	if err := ValidateRosterName("U10 Sharks"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateFieldSize(t *testing.T) {
	if err := ValidateFieldSize(0, 10); err == nil {
		t.Fatal("expected error for non-positive field size")
	}
	if err := ValidateFieldSize(7, 5); err == nil {
		t.Fatal("expected error when roster is smaller than field size")
	}
	if err := ValidateFieldSize(7, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
