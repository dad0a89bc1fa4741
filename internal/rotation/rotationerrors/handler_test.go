package rotationerrors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestHandler_ReportFansOutToListeners(t *testing.T) {
	h := New(fixedClock(time.Unix(0, 0)))
	var got Record
	h.OnError(func(r Record) { got = r })
	h.Report(SeverityError, CategoryState, "invariant violated", "fix_placement", map[string]int{"field": 5})
	assert.Equal(t, SeverityError, got.Severity)
	assert.Equal(t, CategoryState, got.Category)
	assert.Equal(t, "invariant violated", got.Message)
}

func TestHandler_UnsubscribeStopsFanOut(t *testing.T) {
	h := New(nil)
	calls := 0
	unsub := h.OnError(func(Record) { calls++ })
	h.Report(SeverityWarning, CategoryRotation, "x", "y", nil)
	unsub()
	h.Report(SeverityWarning, CategoryRotation, "x", "y", nil)
	assert.Equal(t, 1, calls)
}

func TestHandler_LogIsBoundedToLast100(t *testing.T) {
	h := New(nil)
	for i := 0; i < 130; i++ {
		h.Report(SeverityInfo, CategoryUnknown, "msg", "ctx", i)
	}
	log := h.Log()
	require.Len(t, log, 100)
	assert.Equal(t, 30, log[0].Data)
	assert.Equal(t, 129, log[len(log)-1].Data)
}

func TestHandler_ListenerPanicDoesNotCorruptReport(t *testing.T) {
	h := New(nil)
	second := false
	h.OnError(func(Record) { panic("boom") })
	h.OnError(func(Record) { second = true })
	require.NotPanics(t, func() {
		h.Report(SeverityCritical, CategoryState, "x", "y", nil)
	})
	assert.True(t, second)
}

func TestTry_ReturnsFallbackOnError(t *testing.T) {
	h := New(nil)
	result := Try(h, CategoryValidation, "setup", func() (int, error) {
		return 0, errors.New("bad input")
	}, -1)
	assert.Equal(t, -1, result)
	require.Len(t, h.Log(), 1)
	assert.Equal(t, CategoryValidation, h.Log()[0].Category)
}

func TestTry_ReturnsFallbackOnPanic(t *testing.T) {
	h := New(nil)
	result := Try(h, CategoryState, "tick", func() (int, error) {
		panic("boom")
	}, 7)
	assert.Equal(t, 7, result)
}

func TestTry_ReturnsValueOnSuccess(t *testing.T) {
	h := New(nil)
	result := Try(h, CategoryValidation, "setup", func() (int, error) {
		return 42, nil
	}, -1)
	assert.Equal(t, 42, result)
	assert.Empty(t, h.Log())
}

func TestTryAsync_DeliversFallbackOnFailure(t *testing.T) {
	h := New(nil)
	ch := TryAsync(h, CategoryTimer, "tick", func() (int, error) {
		return 0, errors.New("timer raised")
	}, -1)
	result := <-ch
	assert.Equal(t, -1, result)
}
