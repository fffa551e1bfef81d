package event_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"TradeBook/internal/event"
	"TradeBook/internal/trade"
)

type recordingPublisher struct {
	calls int
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, _ *event.TradeBooked) error {
	p.calls++
	return p.err
}

func sampleEvent() *event.TradeBooked {
	return &event.TradeBooked{
		EventID:   "EVT-1",
		Timestamp: time.Now().UTC(),
		Trade:     &trade.Record{TradeID: "TRD-1"},
	}
}

func TestFanout_DeliversToAll(t *testing.T) {
	a := &recordingPublisher{}
	b := &recordingPublisher{}
	f := event.Fanout{a, b}

	if err := f.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", a.calls, b.calls)
	}
}

func TestFanout_FailureDoesNotStopDelivery(t *testing.T) {
	errA := errors.New("sink a down")
	a := &recordingPublisher{err: errA}
	b := &recordingPublisher{}
	f := event.Fanout{a, b}

	err := f.Publish(context.Background(), sampleEvent())
	if !errors.Is(err, errA) {
		t.Errorf("joined error should wrap the failing sink, got %v", err)
	}
	if b.calls != 1 {
		t.Error("later publishers must still be attempted")
	}
}

func TestFanout_JoinsAllErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	f := event.Fanout{&recordingPublisher{err: errA}, &recordingPublisher{err: errB}}

	err := f.Publish(context.Background(), sampleEvent())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("both errors should be joined, got %v", err)
	}
}

func TestFanout_Empty(t *testing.T) {
	var f event.Fanout
	if err := f.Publish(context.Background(), sampleEvent()); err != nil {
		t.Errorf("empty fanout should succeed, got %v", err)
	}
}
