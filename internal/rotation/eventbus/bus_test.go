package eventbus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_EmitDeliversInSubscriptionOrder(t *testing.T) {
	b := New(nil)
	var order []int
	b.On(GameStarted, func(Event) error { order = append(order, 1); return nil })
	b.On(GameStarted, func(Event) error { order = append(order, 2); return nil })
	b.Emit(Event{Name: GameStarted})
	assert.Equal(t, []int{1, 2}, order)
}

func TestBus_OnceUnsubscribesAfterFirstEmission(t *testing.T) {
	b := New(nil)
	calls := 0
	b.Once(PeriodEnd, func(Event) error { calls++; return nil })
	b.Emit(Event{Name: PeriodEnd})
	b.Emit(Event{Name: PeriodEnd})
	assert.Equal(t, 1, calls)
}

func TestBus_UnsubscribeFunctionRemovesListener(t *testing.T) {
	b := New(nil)
	calls := 0
	unsub := b.On(RotationPending, func(Event) error { calls++; return nil })
	b.Emit(Event{Name: RotationPending})
	unsub()
	b.Emit(Event{Name: RotationPending})
	assert.Equal(t, 1, calls)
}

func TestBus_ListenerErrorDoesNotStopOtherListeners(t *testing.T) {
	b := New(nil)
	second := false
	b.On(ErrorEvent, func(Event) error { return errors.New("boom") })
	b.On(ErrorEvent, func(Event) error { second = true; return nil })
	b.Emit(Event{Name: ErrorEvent})
	assert.True(t, second)
}

func TestBus_ListenerPanicIsRecovered(t *testing.T) {
	b := New(nil)
	second := false
	b.On(StateValidated, func(Event) error { panic("boom") })
	b.On(StateValidated, func(Event) error { second = true; return nil })
	require.NotPanics(t, func() { b.Emit(Event{Name: StateValidated}) })
	assert.True(t, second)
}

func TestBus_HistoryIsBoundedRing(t *testing.T) {
	b := New(nil)
	for i := 0; i < ringCapacity+10; i++ {
		b.Emit(Event{Name: GameEnded, Data: i})
	}
	history := b.History()
	require.Len(t, history, ringCapacity)
	assert.Equal(t, 10, history[0].Data)
	assert.Equal(t, ringCapacity+9, history[len(history)-1].Data)
}

func TestBus_EmitAsyncWaitsForAllHandlers(t *testing.T) {
	b := New(nil)
	done := make(chan struct{}, 2)
	b.On(GameStarted, func(Event) error { done <- struct{}{}; return nil })
	b.On(GameStarted, func(Event) error { done <- struct{}{}; return nil })
	b.EmitAsync(Event{Name: GameStarted})
	assert.Len(t, done, 2)
}
