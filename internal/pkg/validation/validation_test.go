package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("alice@example.com"))
	assert.True(t, IsValidEmail("a.b+c@sub.example.rw"))
	assert.False(t, IsValidEmail("alice@"))
	assert.False(t, IsValidEmail("alice example.com"))
	assert.False(t, IsValidEmail(""))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+250788123456"))
	assert.True(t, IsValidPhone("250788123456"))
	assert.False(t, IsValidPhone("0"))
	assert.False(t, IsValidPhone("+0123"))
	assert.False(t, IsValidPhone("phone"))
}

func TestLenBetween(t *testing.T) {
	assert.True(t, LenBetween("ab", 2, 4))
	assert.True(t, LenBetween("  ab  ", 2, 4), "whitespace is trimmed before measuring")
	assert.False(t, LenBetween("a", 2, 4))
	assert.False(t, LenBetween("abcde", 2, 4))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}
