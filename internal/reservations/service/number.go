package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateRequestNumber produces a human-quotable identifier like
// RSV-20260914-3F2A9C01. Uniqueness is enforced by the index on
// request_number; callers retry on a duplicate key.
func GenerateRequestNumber(prefix string, now time.Time) string {
	entropy := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), strings.ToUpper(entropy))
}
