package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, h.Compare(hash, "secret1"))
	assert.False(t, h.Compare(hash, "wrong"))
	assert.False(t, h.Compare("", "secret1"))
}

func TestBcryptHasher_InvalidCost(t *testing.T) {
	_, err := NewBcryptHasher(99)
	assert.Error(t, err)
}

func TestUserLocks_SerializesPerUser(t *testing.T) {
	locks := NewUserLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("alice")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, locks.Size())
}

func TestUUIDGenerator(t *testing.T) {
	g := UUIDGenerator{}
	assert.NotEqual(t, g.NewID(), g.NewID())
	assert.Len(t, g.NewID(), 36)
}
