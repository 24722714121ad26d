package logging

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestLogger_RequestID(t *testing.T) {
	buf := captureLog(t)

	ctx := WithRequestID(context.Background(), "rid-1")
	New(ctx).LogError("upload", errors.New("boom"))

	assert.Contains(t, buf.String(), "[error] request_id=rid-1 operation=upload error=boom")
	assert.Equal(t, "rid-1", RequestID(ctx))
}

func TestLogger_UnknownRequestID(t *testing.T) {
	buf := captureLog(t)

	New(context.Background()).LogInfof("stamp", "file=%s", "a.xml")

	assert.Contains(t, buf.String(), "request_id=unknown operation=stamp file=a.xml")
}

func TestLogger_DebugLevel(t *testing.T) {
	buf := captureLog(t)
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("info")
	New(context.Background()).LogDebugf("op", "hidden")
	assert.Empty(t, buf.String())

	SetLevel("debug")
	New(context.Background()).LogDebugf("op", "shown")
	assert.Contains(t, buf.String(), "[debug]")
}
