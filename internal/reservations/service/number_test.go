package service

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestGenerateRequestNumber_Shape(t *testing.T) {
	now := time.Date(2026, time.September, 14, 15, 30, 0, 0, time.UTC)

	number := GenerateRequestNumber("RSV", now)

	if !regexp.MustCompile(`^RSV-20260914-[0-9A-F]{8}$`).MatchString(number) {
		t.Errorf("request number %q does not match the expected shape", number)
	}
	if !strings.HasPrefix(number, "RSV-") {
		t.Errorf("request number %q missing prefix", number)
	}
}

func TestGenerateRequestNumber_Distinct(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n := GenerateRequestNumber("RSV", now)
		if seen[n] {
			t.Fatalf("duplicate request number %q within one batch", n)
		}
		seen[n] = true
	}
}
