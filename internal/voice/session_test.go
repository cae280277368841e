package voice

import (
	"os"
	"sync/atomic"
	"testing"
	"time"

	"converso-go/internal/model"
	"converso-go/pkg/log"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}

// waitFor 轮询条件直到成立或超时。
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

func deliver(t *testing.T, s *Session, evs ...Event) {
	t.Helper()
	for _, ev := range evs {
		if !s.Deliver(ev) {
			t.Fatalf("deliver %s rejected", ev.Type)
		}
	}
}

func TestSession_HappyPathTransitions(t *testing.T) {
	s := NewSession(nil, nil)
	defer s.Abort()

	if s.Status() != StatusInactive {
		t.Fatalf("expected INACTIVE, got %s", s.Status())
	}

	deliver(t, s, Event{Type: EventStartRequested})
	waitFor(t, func() bool { return s.Status() == StatusConnecting }, "expected CONNECTING")

	deliver(t, s, Event{Type: EventStarted})
	waitFor(t, func() bool { return s.Status() == StatusActive }, "expected ACTIVE")

	deliver(t, s, Event{Type: EventEnded})
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish")
	}
	if s.Status() != StatusFinished {
		t.Fatalf("expected FINISHED, got %s", s.Status())
	}
}

func TestSession_StartFailedReturnsToInactive(t *testing.T) {
	s := NewSession(nil, nil)
	defer s.Abort()

	deliver(t, s, Event{Type: EventStartRequested})
	waitFor(t, func() bool { return s.Status() == StatusConnecting }, "expected CONNECTING")

	deliver(t, s, Event{Type: EventStartFailed})
	waitFor(t, func() bool { return s.Status() == StatusInactive }, "expected INACTIVE after start failure")
}

func TestSession_NeverReversesAfterFinished(t *testing.T) {
	s := NewSession(nil, nil)

	deliver(t, s,
		Event{Type: EventStartRequested},
		Event{Type: EventStarted},
		Event{Type: EventEnded},
	)
	<-s.Done()

	// 结束后的投递被拒绝，状态保持 FINISHED
	if s.Deliver(Event{Type: EventStartRequested}) {
		t.Fatal("expected delivery after FINISHED to be rejected")
	}
	if s.Status() != StatusFinished {
		t.Fatalf("expected FINISHED, got %s", s.Status())
	}
}

func TestSession_OutOfPhaseEventsIgnored(t *testing.T) {
	s := NewSession(nil, nil)
	defer s.Abort()

	// INACTIVE 阶段的 call-start 与 speech-start 都应被忽略
	deliver(t, s, Event{Type: EventStarted}, Event{Type: EventSpeechStart})
	deliver(t, s, Event{Type: EventStartRequested})
	waitFor(t, func() bool { return s.Status() == StatusConnecting }, "expected CONNECTING")
	if s.IsSpeaking() {
		t.Fatal("speaking should not be set before ACTIVE")
	}
}

func TestSession_SpeakingToggles(t *testing.T) {
	s := NewSession(nil, nil)
	defer s.Abort()

	deliver(t, s, Event{Type: EventStartRequested}, Event{Type: EventStarted})
	waitFor(t, func() bool { return s.Status() == StatusActive }, "expected ACTIVE")

	deliver(t, s, Event{Type: EventSpeechStart})
	waitFor(t, func() bool { return s.IsSpeaking() }, "expected speaking")

	deliver(t, s, Event{Type: EventSpeechEnd})
	waitFor(t, func() bool { return !s.IsSpeaking() }, "expected not speaking")
}

func TestSession_TranscriptNewestFirstFinalOnly(t *testing.T) {
	s := NewSession(nil, nil)
	defer s.Abort()

	deliver(t, s, Event{Type: EventStartRequested}, Event{Type: EventStarted})
	deliver(t, s,
		Event{Type: EventMessage, Role: "assistant", TranscriptType: "partial", Transcript: "Let"},
		Event{Type: EventMessage, Role: "assistant", TranscriptType: "final", Transcript: "Let us begin."},
		Event{Type: EventMessage, Role: "user", TranscriptType: "final", Transcript: "Okay."},
	)

	waitFor(t, func() bool { return len(s.Transcript()) == 2 }, "expected 2 final messages")

	transcript := s.Transcript()
	if transcript[0].Content != "Okay." || transcript[1].Content != "Let us begin." {
		t.Fatalf("expected newest first, got %+v", transcript)
	}
	if transcript[0].Role != "user" || transcript[1].Role != "assistant" {
		t.Fatalf("unexpected roles %+v", transcript)
	}
}

func TestSession_OnFinishFiresOnceWithTranscript(t *testing.T) {
	var calls int32
	got := make(chan []model.TranscriptMessage, 1)
	s := NewSession(func(transcript []model.TranscriptMessage) {
		atomic.AddInt32(&calls, 1)
		got <- transcript
	}, nil)

	deliver(t, s,
		Event{Type: EventStartRequested},
		Event{Type: EventStarted},
		Event{Type: EventMessage, Role: "user", TranscriptType: "final", Transcript: "hi"},
		Event{Type: EventEnded},
	)
	<-s.Done()

	select {
	case transcript := <-got:
		if len(transcript) != 1 || transcript[0].Content != "hi" {
			t.Fatalf("unexpected transcript %+v", transcript)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("onFinish not called")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected onFinish once, got %d", n)
	}
}

func TestSession_EndFromConnectingStillFinishes(t *testing.T) {
	finished := make(chan struct{})
	s := NewSession(func([]model.TranscriptMessage) { close(finished) }, nil)

	deliver(t, s, Event{Type: EventStartRequested}, Event{Type: EventEnded})

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("expected FINISHED from CONNECTING on call-end")
	}
}

func TestSession_AbortSkipsFinishSideEffects(t *testing.T) {
	var calls int32
	s := NewSession(func([]model.TranscriptMessage) { atomic.AddInt32(&calls, 1) }, nil)

	deliver(t, s, Event{Type: EventStartRequested}, Event{Type: EventStarted})
	waitFor(t, func() bool { return s.Status() == StatusActive }, "expected ACTIVE")

	s.Abort()

	if s.Deliver(Event{Type: EventEnded}) {
		t.Fatal("expected delivery after Abort to be rejected")
	}
	// 给消费协程留出时间确认没有误触发
	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("expected no onFinish after Abort, got %d", n)
	}
}

func TestSession_TransitionCallbacks(t *testing.T) {
	transitions := make(chan CallStatus, 8)
	s := NewSession(nil, func(status CallStatus, _ bool) {
		transitions <- status
	})

	deliver(t, s,
		Event{Type: EventStartRequested},
		Event{Type: EventStarted},
		Event{Type: EventEnded},
	)
	<-s.Done()
	close(transitions)

	var seen []CallStatus
	for st := range transitions {
		seen = append(seen, st)
	}
	want := []CallStatus{StatusConnecting, StatusActive, StatusFinished}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transition %d: expected %s, got %s", i, want[i], seen[i])
		}
	}
}
