package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &ZapLogger{z: zap.New(core).Sugar()}, logs
}

func TestFromContext_Default(t *testing.T) {
	// Without an attached logger, context logging is a safe no-op.
	ctx := context.Background()
	assert.NotNil(t, FromContext(ctx))
	assert.NotPanics(t, func() { Info(ctx, "ignored") })
}

func TestWithAndFromContext(t *testing.T) {
	logger, logs := newObservedLogger()
	ctx := With(context.Background(), logger)

	Infow(ctx, "token issued", "client_role", "trusted_client")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "token issued", entries[0].Message)
	assert.Equal(t, "trusted_client", entries[0].ContextMap()["client_role"])
}

func TestTrack(t *testing.T) {
	logger, logs := newObservedLogger()
	ctx := With(context.Background(), logger)

	Track(ctx, "grant_type", "client_credentials")
	Warn(ctx, "scope rejected")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "client_credentials", entries[0].ContextMap()["grant_type"])
}

func TestNamed(t *testing.T) {
	logger, logs := newObservedLogger()
	logger.Named("issuer").Info("hello")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "issuer", entries[0].LoggerName)
}
