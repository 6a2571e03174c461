package mongo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/internhub/pkg/mongo"
)

func TestNew_EmptyURL(t *testing.T) {
	_, err := mongo.New(context.Background(), mongo.Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mongo.ErrEmptyConnectionURL))
}

func TestNew_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mongo.New(ctx, mongo.Config{
		ConnectionURL:  "mongodb://127.0.0.1:1",
		ConnectTimeout: 50 * time.Millisecond,
		RetryAttempts:  2,
		RetryInterval:  time.Second,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mongo.ErrConnect))
}
