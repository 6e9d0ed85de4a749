package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_BadURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz", PoolOptions{})
	assert.ErrorContains(t, err, "parse database url")
}
