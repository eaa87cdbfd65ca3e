// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hubredis "github.com/taibuivan/digitalhub/internal/platform/redis"
)

func TestNewClient(t *testing.T) {
	server := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := hubredis.NewClient(context.Background(), "redis://"+server.Addr()+"/0", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, hubredis.Ping(context.Background(), client))

	server.Close()
	assert.Error(t, hubredis.Ping(context.Background(), client))
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := hubredis.NewClient(context.Background(), "::not-a-url", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
