package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeForbidden, "no")
		assert.True(t, HasCode(err, CodeForbidden))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches wrapped domain code", func(t *testing.T) {
		inner := New(CodeTooManyRequests, "slow down")
		err := Wrap(inner, CodeInternal, "send failed")
		assert.True(t, HasCode(err, CodeTooManyRequests))
		assert.True(t, HasCode(err, CodeInternal))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})

	t.Run("wrap nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "x"))
	})
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "Login failed", MessageOf(errors.New("dial tcp"), "Login failed"))
	assert.Equal(t, "bad creds", MessageOf(New(CodeUnauthorized, "bad creds"), "Login failed"))
}
