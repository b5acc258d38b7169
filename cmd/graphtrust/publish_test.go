package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEvents(t *testing.T) {
	in := strings.NewReader(`{"type":"signup","request_id":"r-1","user_id":"42"}

{"type":"actor_flagged","user_id":"99"}
`)
	got, err := readEvents(in)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r-1", string(got[0].key))
	assert.Nil(t, got[1].key)
	assert.JSONEq(t, `{"type":"actor_flagged","user_id":"99"}`, string(got[1].value))
}

func TestReadEventsRejects(t *testing.T) {
	tests := map[string]string{
		"empty input":  "\n\n",
		"bad json":     `{"type":`,
		"unknown type": `{"type":"refund"}`,
		"missing type": `{"user_id":"1"}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := readEvents(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestCLIPublishValidatesBeforeSending(t *testing.T) {
	t.Setenv("MODEL_STORE", "memory")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(`{"type":"signup","user_id":"1"}`))
	root.SetArgs([]string{"publish"})
	assert.ErrorContains(t, root.Execute(), "KAFKA_BROKERS")

	t.Setenv("KAFKA_BROKERS", "127.0.0.1:1")
	root = newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(`{"type":"refund"}`))
	root.SetArgs([]string{"publish"})
	assert.ErrorContains(t, root.Execute(), "unknown event type")
}
