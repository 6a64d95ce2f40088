package upload

import "testing"

func TestPercent(t *testing.T) {
	tests := []struct {
		sent, total int64
		want        int
		ok          bool
	}{
		{0, 0, 0, false},
		{10, -1, 0, false},
		{0, 200, 0, true},
		{1, 200, 1, true},
		{101, 200, 51, true},
		{200, 200, 100, true},
		{250, 200, 100, true},
		{-5, 200, 0, true},
	}
	for _, tc := range tests {
		got, ok := Percent(tc.sent, tc.total)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("Percent(%d, %d) = %d,%v want %d,%v", tc.sent, tc.total, got, ok, tc.want, tc.ok)
		}
	}
}

func TestEmitterProgressIsMonotonicAndDeduplicated(t *testing.T) {
	var seen []int
	em := newEmitter(Callbacks{OnProgress: func(p int) { seen = append(seen, p) }})

	for _, sent := range []int64{10, 10, 45, 30, 100} {
		em.progress(sent, 100)
	}
	want := []int{10, 45, 100}
	if len(seen) != len(want) {
		t.Fatalf("progress = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("progress = %v, want %v", seen, want)
		}
	}
}

func TestEmitterUnknownTotalSkipsProgress(t *testing.T) {
	calls := 0
	em := newEmitter(Callbacks{OnProgress: func(int) { calls++ }})
	em.progress(50, 0)
	if calls != 0 {
		t.Fatalf("expected no progress with unknown total, got %d calls", calls)
	}
}

func TestEmitterCompleteForcesHundredFirst(t *testing.T) {
	var events []string
	em := newEmitter(Callbacks{
		OnProgress: func(p int) {
			if p == 100 {
				events = append(events, "progress:100")
			}
		},
		OnComplete: func(Response) { events = append(events, "complete") },
		OnError:    func(string) { events = append(events, "error") },
	})
	em.progress(40, 100)
	if !em.complete(Response{}) {
		t.Fatal("expected first complete to fire")
	}
	em.progress(100, 100)
	if em.fail("late") || em.complete(Response{}) {
		t.Fatal("terminal callbacks must fire only once")
	}
	if len(events) != 2 || events[0] != "progress:100" || events[1] != "complete" {
		t.Fatalf("unexpected events: %v", events)
	}
}

func TestEmitterTransferredFiresOnceAndNotAfterFailure(t *testing.T) {
	count := 0
	em := newEmitter(Callbacks{OnTransferred: func() { count++ }})
	em.markTransferred()
	em.markTransferred()
	if count != 1 {
		t.Fatalf("expected one transferred event, got %d", count)
	}

	count = 0
	em = newEmitter(Callbacks{OnTransferred: func() { count++ }})
	em.fail("boom")
	em.markTransferred()
	if count != 0 {
		t.Fatalf("expected no transferred event after failure, got %d", count)
	}
}
