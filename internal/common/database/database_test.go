package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	client, err := NewRedisClient("not-a-redis-url")
	assert.Error(t, err)
	assert.Nil(t, client)
}
