package host_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host/hosttest"
)

func TestInTransaction_Commit(t *testing.T) {
	tm := &hosttest.Transactions{}

	ran := false
	err := host.InTransaction(tm, "set sun", func() error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, []string{"set sun"}, tm.Committed)
	assert.Empty(t, tm.RolledBack)
	assert.Zero(t, tm.Open())
}

func TestInTransaction_RollsBackOnError(t *testing.T) {
	tm := &hosttest.Transactions{}
	boom := errors.New("boom")

	err := host.InTransaction(tm, "export", func() error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"export"}, tm.RolledBack)
	assert.Zero(t, tm.Open())
}

func TestInTransaction_RollsBackOnPanic(t *testing.T) {
	tm := &hosttest.Transactions{}

	assert.Panics(t, func() {
		_ = host.InTransaction(tm, "export", func() error { panic("host crashed") })
	})
	assert.Equal(t, []string{"export"}, tm.RolledBack)
	assert.Zero(t, tm.Open())
}

func TestInTransaction_BeginError(t *testing.T) {
	tm := &hosttest.Transactions{BeginErr: errors.New("read-only")}

	called := false
	err := host.InTransaction(tm, "export", func() error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
}

func TestExportOptions_HasShading(t *testing.T) {
	assert.False(t, host.ExportOptions{ZoneIDs: []host.ElementID{1}}.HasShading())
	assert.True(t, host.ExportOptions{ShadingIDs: []host.ElementID{2}}.HasShading())
}
