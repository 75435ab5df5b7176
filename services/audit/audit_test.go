package audit

import (
	// Go Internal Packages
	"context"
	"testing"
	"time"

	// Local Packages
	errors "paygate/errors"
	memory "paygate/repositories/memory"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLog() *Log {
	l := NewLog(zap.NewNop(), memory.NewStore())
	l.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l
}

func TestAppendAndList(t *testing.T) {
	l := newLog()
	ctx := context.Background()

	_, err := l.Append(ctx, "tx-1", "first", true)
	require.NoError(t, err)
	_, err = l.AddNote(ctx, "tx-1", "called the customer")
	require.NoError(t, err)
	_, err = l.Append(ctx, "tx-2", "other", true)
	require.NoError(t, err)

	logs, err := l.List(ctx, "tx-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "first", logs[0].Message)
	assert.True(t, logs[0].SystemGenerated)
	assert.False(t, logs[1].SystemGenerated)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), logs[0].Timestamp)
}

func TestAppendValidates(t *testing.T) {
	l := newLog()

	_, err := l.Append(context.Background(), "", "msg", true)
	assert.True(t, errors.Is(errors.Invalid, err))

	_, err = l.Append(context.Background(), "tx-1", "  ", true)
	assert.True(t, errors.Is(errors.Invalid, err))
}

func TestAppendStructured(t *testing.T) {
	l := newLog()

	entry, err := l.AppendStructured(context.Background(), "tx-1", map[string]any{
		"status": "approved",
		"code":   100,
	})
	require.NoError(t, err)
	assert.True(t, entry.SystemGenerated)
	assert.Equal(t, "code: 100\nstatus: approved\n", entry.Message)
}

func TestEditNote(t *testing.T) {
	l := newLog()
	ctx := context.Background()

	note, err := l.AddNote(ctx, "tx-1", "typo")
	require.NoError(t, err)
	require.NoError(t, l.EditNote(ctx, note.ID, "fixed"))

	logs, err := l.List(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "fixed", logs[0].Message)

	system, err := l.Append(ctx, "tx-1", "posted", true)
	require.NoError(t, err)
	assert.True(t, errors.Is(errors.Invalid, l.EditNote(ctx, system.ID, "tampered")))

	assert.True(t, errors.Is(errors.NotFound, l.EditNote(ctx, "missing", "x")))
}
