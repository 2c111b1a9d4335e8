package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModelCannedResponse(t *testing.T) {
	m := NewMockModel("test-model")
	m.AddResponse("hello", "world")

	resp, err := m.Generate(context.Background(), Request{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "world", resp.Text)
	require.NotNil(t, resp.Usage)
}

func TestMockModelDefaultEcho(t *testing.T) {
	m := NewMockModel("test-model")

	resp, err := m.Generate(context.Background(), Request{Prompt: "anything"})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: anything", resp.Text)
}

func TestMockModelError(t *testing.T) {
	m := NewMockModel("test-model")
	m.Err = errors.New("provider down")

	_, err := m.Generate(context.Background(), Request{Prompt: "x"})
	assert.Error(t, err)
}

func TestMockModelRespectsCancellation(t *testing.T) {
	m := NewMockModel("test-model")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, Request{Prompt: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockModelInfo(t *testing.T) {
	m := NewMockModel("test-model")
	assert.Equal(t, Info{Name: "test-model", Provider: "mock"}, m.Info())
}
