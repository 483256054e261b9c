// Package id provides the opaque identifier type shared by every StayBook record.
package id

import (
	"errors"
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for each record kind.
const (
	PrefixUser    = "usr"
	PrefixPlace   = "plc"
	PrefixBooking = "bkg"
)

// nanoidLength is the default go-nanoid length.
const nanoidLength = 21

// ErrInvalid is returned by Parse for values that cannot be identifiers.
var ErrInvalid = errors.New("invalid identifier")

// ID is an opaque record identifier. Two IDs refer to the same record
// exactly when they are equal.
type ID string

// Nil is the zero ID.
const Nil ID = ""

// String returns the wire form of the ID.
func (i ID) String() string { return string(i) }

// IsZero reports whether the ID is unset.
func (i ID) IsZero() bool { return i == Nil }

// HasPrefix reports whether the ID was generated for the given record kind.
func (i ID) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(i), prefix+"-")
}

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "plc-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (ID, error) {
	n, err := gonanoid.New()
	if err != nil {
		return Nil, fmt.Errorf("generate nanoid: %w", err)
	}
	return ID(prefix + "-" + n), nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) ID {
	i, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return i
}

// Token returns a bare NanoID without prefix, used for file names.
func Token() (string, error) {
	n, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return n, nil
}

// Parse validates an identifier received from a client.
// Only the character set and length are checked; unknown IDs are a
// lookup concern, not a parse error.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 64 {
		return Nil, ErrInvalid
	}
	for _, c := range s {
		if !isURLSafe(c) {
			return Nil, ErrInvalid
		}
	}
	return ID(s), nil
}

func isURLSafe(c rune) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '-'
}
