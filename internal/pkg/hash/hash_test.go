package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordCost(t *testing.T) {
	tests := []struct {
		name     string
		cost     int
		wantCost int
	}{
		{name: "минимальная стоимость", cost: bcrypt.MinCost, wantCost: bcrypt.MinCost},
		{name: "ноль заменяется на стоимость по умолчанию", cost: 0, wantCost: DefaultCost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := HashPasswordCost("admin123", tt.cost)
			require.NoError(t, err)

			cost, err := bcrypt.Cost([]byte(h))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cost)

			assert.True(t, CheckPassword(h, "admin123"))
			assert.False(t, CheckPassword(h, "admin124"))
		})
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPasswordCost(strings.Repeat("x", 73), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
