package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_EmitDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(4)
	first, cancelFirst := bus.Subscribe()
	defer cancelFirst()
	second, cancelSecond := bus.Subscribe()
	defer cancelSecond()

	emitted := bus.Emit(Connect, json.RawMessage(`true`))

	for _, ch := range []<-chan Event{first, second} {
		select {
		case ev := <-ch:
			assert.Equal(t, emitted, ev)
			assert.Equal(t, Connect, ev.Name)
			assert.JSONEq(t, `true`, string(ev.Payload))
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	_, err := ksuid.Parse(emitted.ID)
	assert.NoError(t, err)
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(1)
	ch, cancel := bus.Subscribe()
	require.Equal(t, 1, bus.Subscribers())

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, bus.Subscribers())

	// emitting with nobody listening is fine
	bus.Emit(OpenLog, nil)
}

func TestBus_SlowSubscriberDropsEvents(t *testing.T) {
	bus := NewBus(1)
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Emit(ImportConfig, nil)
	bus.Emit(ExportConfig, nil)

	ev := <-ch
	assert.Equal(t, ImportConfig, ev.Name)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected event %q", extra.Name)
	default:
	}
}

func TestIsKnown(t *testing.T) {
	for _, name := range Names {
		assert.True(t, IsKnown(name))
	}
	assert.False(t, IsKnown("reboot"))
}
