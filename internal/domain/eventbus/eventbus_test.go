package eventbus

import (
	"testing"
)

func TestPublishSubscribe(t *testing.T) {
	bus := New()

	var got StateEventData
	err := bus.Subscribe(EventSessionState, func(data StateEventData) {
		got = data
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	bus.Publish(EventSessionState, StateEventData{
		Previous: "empty",
		Current:  "image_selected",
		FileName: "photo.jpg",
	})

	if got.Current != "image_selected" {
		t.Errorf("expected handler to receive event, got %+v", got)
	}
}

func TestSharedBusSingleton(t *testing.T) {
	if Get() != Get() {
		t.Error("Get must return the same bus instance")
	}
}

func TestUnsubscribe(t *testing.T) {
	calls := 0
	fn := func(data NotifyEventData) { calls++ }

	if err := Subscribe(EventSessionNotify, fn); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	Publish(EventSessionNotify, NotifyEventData{Level: LevelInfo, Message: "hello"})
	if err := Unsubscribe(EventSessionNotify, fn); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	Publish(EventSessionNotify, NotifyEventData{Level: LevelInfo, Message: "again"})

	if calls != 1 {
		t.Errorf("expected exactly one delivery, got %d", calls)
	}
}
