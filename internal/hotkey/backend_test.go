package hotkey

import (
	"context"
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{" Portal ", ModePortal, false},
		{"legacy", ModeLegacy, false},
		{"x11", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBroadcasterDelivers(t *testing.T) {
	b := newBroadcaster[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := b.subscribe(ctx)
	second := b.subscribe(ctx)
	b.publish(7)

	for _, ch := range []<-chan int{first, second} {
		select {
		case v := <-ch:
			if v != 7 {
				t.Fatalf("got %d", v)
			}
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestBroadcasterClosesOnCancel(t *testing.T) {
	b := newBroadcaster[int]()
	ctx, cancel := context.WithCancel(context.Background())
	ch := b.subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("unexpected value")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	b.publish(1)
}

func TestBroadcasterClose(t *testing.T) {
	b := newBroadcaster[int]()
	ch := b.subscribe(context.Background())
	b.close()
	b.close()

	if _, ok := <-ch; ok {
		t.Fatal("channel open after close")
	}
	if _, ok := <-b.subscribe(context.Background()); ok {
		t.Fatal("subscribe after close returned an open channel")
	}
}

func TestBroadcasterKeepsBacklog(t *testing.T) {
	b := newBroadcaster[int]()
	ch := b.subscribe(context.Background())
	const n = 100
	for i := 0; i < n; i++ {
		b.publish(i)
	}
	b.close()

	var got []int
	timeout := time.After(5 * time.Second)
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				if len(got) != n {
					t.Fatalf("received %d of %d events", len(got), n)
				}
				return
			}
			if v != len(got) {
				t.Fatalf("event %d arrived as %d", len(got), v)
			}
			got = append(got, v)
		case <-timeout:
			t.Fatalf("backlog not drained, received %d of %d", len(got), n)
		}
	}
}

func TestBroadcasterPublishDoesNotWaitForReader(t *testing.T) {
	b := newBroadcaster[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = b.subscribe(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.publish(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a subscriber that is not reading")
	}
}
