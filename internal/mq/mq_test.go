package mq

import (
	"context"
	"testing"

	"github.com/recipebook/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Disabled(t *testing.T) {
	backend, err := Open(context.Background(), config.MQConfig{})
	require.NoError(t, err)
	assert.Nil(t, backend)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.MQConfig{Backend: "kafka"})
	assert.ErrorContains(t, err, "unknown mq backend")
}

func TestNewRabbitMQClient_RequiresURL(t *testing.T) {
	_, err := NewRabbitMQClient(config.RabbitMQConfig{URL: " "})
	assert.ErrorContains(t, err, "url is required")
}

func TestNewPubSubClient_RequiresProject(t *testing.T) {
	_, err := NewPubSubClient(context.Background(), config.PubSubConfig{})
	assert.ErrorContains(t, err, "project id is required")
}
