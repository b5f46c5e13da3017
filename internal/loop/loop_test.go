package loop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arclabs/arc-runtime/internal/breaker"
)

func TestBusyWaitReturnsImmediately(t *testing.T) {
	l := New(Config{Mode: BusyWait}, nil)
	br := breaker.New()
	l.Start()

	done := make(chan bool, 1)
	go func() { done <- l.Wait(br) }()

	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("BUSY_WAIT should not block")
	}
}

func TestWakeUnblocksEventDriven(t *testing.T) {
	l := New(Config{Mode: EventDriven}, nil)
	br := breaker.New()
	l.Start()

	done := make(chan bool, 1)
	go func() { done <- l.Wait(br) }()

	time.Sleep(20 * time.Millisecond)
	l.Wake()

	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after Wake")
	}
}

func TestBreakerUnblocksWait(t *testing.T) {
	l := New(Config{Mode: EventDriven}, nil)
	br := breaker.New()
	l.Start()

	done := make(chan bool, 1)
	go func() { done <- l.Wait(br) }()

	time.Sleep(20 * time.Millisecond)
	br.Trip()

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after breaker trip")
	}
}

func TestHighRateTicksPeriodically(t *testing.T) {
	l := New(Config{Mode: HighRate, Interval: 10 * time.Millisecond}, nil)
	br := breaker.New()
	l.Start()
	defer l.Stop()

	require.True(t, l.Wait(br))
	require.True(t, l.Wait(br))
}

func TestWatchFiresTick(t *testing.T) {
	l := New(Config{Mode: EventDriven}, nil)
	br := breaker.New()
	l.Start()

	notifier := make(chan struct{}, 1)
	require.True(t, l.Watch(notifier))

	done := make(chan bool, 1)
	go func() { done <- l.Wait(br) }()

	time.Sleep(20 * time.Millisecond)
	notifier <- struct{}{}

	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after watched notifier fired")
	}
}

func TestCounters(t *testing.T) {
	l := New(Config{Mode: BusyWait}, nil)
	br := breaker.New()

	l.Start()
	l.Start()
	require.Equal(t, int64(2), l.StartCount())

	l.Wait(br)
	require.Equal(t, int64(1), l.WaitCount())

	l.Wake()
	require.Equal(t, int64(1), l.WakeCount())

	l.Watch(make(chan struct{}))
	require.Equal(t, int64(1), l.WatchCount())
}
