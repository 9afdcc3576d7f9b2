package utils

import (
	"strconv"
	"testing"
)

func TestGenerateOTPCode_shape(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateOTPCode()
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q should be 6 characters", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q should be numeric: %v", code, err)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d outside the six-digit range", n)
		}
	}
}

func TestGenerateOTPCode_varies(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := GenerateOTPCode()
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		seen[code] = struct{}{}
	}
	// 50 draws from a 900000-value space colliding down to one value would
	// mean the generator is broken.
	if len(seen) < 2 {
		t.Error("generator produced a single repeated code")
	}
}
