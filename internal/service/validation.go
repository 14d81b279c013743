package service

import (
	"fmt"
	"strings"
	"time"
)

const (
	deadlineInputLayout   = "02-01-2006"
	deadlineStorageLayout = "02 Jan 2006"
)

// NormalizeDeadline validates a strict DD-MM-YYYY deadline and returns
// it in the stored "02 Jan 2006" form. Single-digit day or month, or an
// impossible calendar date, rejects the whole value.
func NormalizeDeadline(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != len(deadlineInputLayout) {
		return "", fmt.Errorf("deadline %q does not match DD-MM-YYYY", raw)
	}
	t, err := time.Parse(deadlineInputLayout, raw)
	if err != nil {
		return "", fmt.Errorf("deadline %q does not match DD-MM-YYYY: %w", raw, err)
	}
	return t.Format(deadlineStorageLayout), nil
}
