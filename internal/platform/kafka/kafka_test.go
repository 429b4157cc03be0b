package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_NoBrokers(t *testing.T) {
	client, err := NewClient(nil, "visitreg")
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewClient_LazyConnect(t *testing.T) {
	client, err := NewClient([]string{"127.0.0.1:1"}, "visitreg")
	require.NoError(t, err)
	require.NotNil(t, client)
	client.Close()
}
