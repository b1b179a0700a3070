package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBase62(t *testing.T) {
	tests := []struct {
		name   string
		n      uint64
		length int
		want   string
	}{
		{"zero", 0, 6, "aaaaaa"},
		{"one", 1, 6, "aaaaab"},
		{"last digit", 61, 6, "aaaaa9"},
		{"carry", 62, 6, "aaaaba"},
		{"short length", 3, 1, "d"},
		{"max for length", MaxCodeValue(2), 2, "99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeBase62(tt.n, tt.length)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeBase62_Overflow(t *testing.T) {
	_, err := EncodeBase62(MaxCodeValue(2)+1, 2)
	assert.ErrorIs(t, err, ErrCodeOverflow)

	_, err = EncodeBase62(1, 0)
	assert.ErrorIs(t, err, ErrCodeOverflow)
}

func TestEncodeBase62_Injective(t *testing.T) {
	seen := make(map[string]uint64, 5000)
	for n := uint64(0); n < 5000; n++ {
		code, err := EncodeBase62(n, 3)
		require.NoError(t, err)
		if prev, ok := seen[code]; ok {
			t.Fatalf("code %q produced by %d and %d", code, prev, n)
		}
		seen[code] = n
	}
}

func TestMaxCodeValue(t *testing.T) {
	assert.Equal(t, uint64(0), MaxCodeValue(0))
	assert.Equal(t, uint64(61), MaxCodeValue(1))
	assert.Equal(t, uint64(56800235583), MaxCodeValue(6))
	assert.Equal(t, ^uint64(0), MaxCodeValue(20))
}

func TestIsValidCode(t *testing.T) {
	assert.True(t, IsValidCode("abc123", 6))
	assert.True(t, IsValidCode("ZZZZZZ", 6))
	assert.False(t, IsValidCode("abc12", 6))
	assert.False(t, IsValidCode("abc12!", 6))
	assert.False(t, IsValidCode("", 6))
}
