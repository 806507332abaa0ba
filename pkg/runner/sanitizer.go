package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/toolhouse/pkg/domain"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "TOOLHOUSE_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput cleans user input by enforcing size limits,
// validating UTF-8, and stripping dangerous control characters.
func SanitizeInput(input string) (string, error) {
	return sanitize(input, MaxInputSize())
}

func sanitize(input string, limit int) (string, error) {
	// We explicitly reject rather than truncate so a tool never acts on a
	// prefix of what the caller sent.
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Newline, tab and carriage return survive; ESC, NULL, BEL and the rest
	// are removed to keep logs and terminals clean.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// SanitizeArgs applies SanitizeInput to every string argument, including
// strings nested in lists and objects. The input map is not modified.
func SanitizeArgs(args map[string]any) (map[string]any, error) {
	return sanitizeArgs(args, MaxInputSize())
}

func sanitizeArgs(args map[string]any, limit int) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for k, v := range args {
		clean, err := sanitizeValue(v, limit)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %q: %w", domain.ErrInvalidArguments, k, err)
		}
		out[k] = clean
	}
	return out, nil
}

func sanitizeValue(v any, limit int) (any, error) {
	switch x := v.(type) {
	case string:
		return sanitize(x, limit)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			clean, err := sanitizeValue(item, limit)
			if err != nil {
				return nil, err
			}
			out[i] = clean
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			clean, err := sanitizeValue(item, limit)
			if err != nil {
				return nil, err
			}
			out[k] = clean
		}
		return out, nil
	default:
		return v, nil
	}
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

// MaxInputSize returns the per-string size limit, honouring EnvMaxInputSize.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
