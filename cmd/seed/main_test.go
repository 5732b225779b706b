package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoBooks(t *testing.T) {
	books, err := demoBooks(50, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	require.Len(t, books, 50)

	isbns := make(map[string]bool)
	for _, b := range books {
		assert.Len(t, b.ISBN, 13)
		assert.False(t, isbns[b.ISBN], "duplicate isbn %s", b.ISBN)
		isbns[b.ISBN] = true
		assert.NotEmpty(t, b.ID)
	}
	assert.Equal(t, "9780000000001", books[0].ISBN)
}

func TestDemoBooks_Empty(t *testing.T) {
	books, err := demoBooks(0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Empty(t, books)
}
