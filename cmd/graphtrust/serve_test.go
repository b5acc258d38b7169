package main

import (
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeConsumerFailureStartsNoListener(t *testing.T) {
	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := free.Addr().String()
	require.NoError(t, free.Close())

	t.Setenv("MODEL_STORE", "memory")
	t.Setenv("TRAIN_ON_START", "false")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("GRAPHTRUST_ADDR", addr)
	t.Setenv("KAFKA_BROKERS", "127.0.0.1:not-a-port")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"serve"})
	assert.Error(t, root.Execute())

	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err, "address should be free after serve returns")
	_ = ln.Close()
}
