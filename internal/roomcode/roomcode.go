package roomcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Uppercase base32 without the characters people misread (0/O, 1/I/L, U).
const alphabet = "23456789ABCDEFGHJKMNPQRSTVWXYZ"

// Length of generated codes.
const Length = 4

// MaxLength bounds codes chosen by players, in characters.
const MaxLength = 32

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator handles room code generation with configurable randomness
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a new generator with optional RandSource
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new room code using crypto/rand
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new room code using the generator's RandSource
func (g *Generator) Generate() string {
	var b strings.Builder
	b.Grow(Length)
	for range Length {
		b.WriteByte(alphabet[g.intN(len(alphabet))])
	}
	return b.String()
}

func (g *Generator) intN(n int) int {
	if g.randSource != nil {
		return g.randSource.IntN(n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	return int(v.Int64())
}

// Normalize trims and uppercases a code typed by a player. Codes are case
// insensitive in any script, so "стая" and "СТАЯ" name the same room.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks a normalized room code: 1 to MaxLength upper case letters
// of any script, digits, '-' or '_'.
func Validate(code string) error {
	if code == "" {
		return fmt.Errorf("room code must not be empty")
	}
	if n := utf8.RuneCountInString(code); n > MaxLength {
		return fmt.Errorf("room code must be at most %d characters, got %d", MaxLength, n)
	}
	for i, char := range code {
		switch {
		case unicode.IsLetter(char) && !unicode.IsLower(char), unicode.IsDigit(char), char == '-', char == '_':
		default:
			return fmt.Errorf("invalid character %q at position %d", char, i)
		}
	}
	return nil
}
