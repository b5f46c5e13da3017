package arc

import (
	"errors"
	"testing"
)

func TestStructuredError(t *testing.T) {
	err := NewError("INGEST", KindChannelNotFound, "unknown channel")

	if err.Op != "INGEST" {
		t.Errorf("Expected Op=INGEST, got %s", err.Op)
	}
	if err.Kind != KindChannelNotFound {
		t.Errorf("Expected Kind=KindChannelNotFound, got %s", err.Kind)
	}

	expected := "arc: unknown channel (op=INGEST)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestNodeError(t *testing.T) {
	err := NewNodeError("INVOKE", "filter_1", KindWASMPanic, "guest trapped")

	if err.NodeKey != "filter_1" {
		t.Errorf("Expected NodeKey=filter_1, got %s", err.NodeKey)
	}

	expected := "arc: guest trapped (op=INVOKE)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestChannelError(t *testing.T) {
	err := NewChannelError("READ_CHANNEL", 7, KindNoData, "no data")

	if !err.HasChannelKey() || err.ChannelKey != 7 {
		t.Errorf("Expected ChannelKey=7, got %d (has=%v)", err.ChannelKey, err.HasChannelKey())
	}
}

func TestWrapError(t *testing.T) {
	inner := errors.New("boom")
	err := WrapError("FLUSH", inner)

	if err.Kind != KindTemporaryHardwareError {
		t.Errorf("Expected Kind=KindTemporaryHardwareError, got %s", err.Kind)
	}
	if !errors.Is(err, inner) {
		t.Error("Expected wrapped error to satisfy errors.Is for the inner error")
	}
}

func TestWrapErrorPreservesStructuredKind(t *testing.T) {
	inner := NewChannelError("READ_CHANNEL", 3, KindNoData, "no data")
	err := WrapError("REFRESH_INPUTS", inner)

	if err.Kind != KindNoData {
		t.Errorf("Expected wrapped Kind=KindNoData, got %s", err.Kind)
	}
	if err.ChannelKey != 3 {
		t.Errorf("Expected ChannelKey=3 to survive wrap, got %d", err.ChannelKey)
	}
}

func TestIsKind(t *testing.T) {
	err := NewError("PUSH", KindQueueFullInput, "queue full")

	if !IsKind(err, KindQueueFullInput) {
		t.Error("IsKind should return true for matching kind")
	}
	if IsKind(err, KindQueueFullOutput) {
		t.Error("IsKind should return false for non-matching kind")
	}
	if IsKind(nil, KindQueueFullInput) {
		t.Error("IsKind should return false for nil error")
	}
}

func TestErrorIsBareKind(t *testing.T) {
	err := NewError("PUSH", KindQueueFullInput, "queue full")

	if !errors.Is(err, KindQueueFullInput) {
		t.Error("errors.Is should match a bare ErrorKind target")
	}
}
