package trace

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"off": LevelOff, "ERROR": LevelError, "phase": LevelPhase, "Detail": LevelDetail, "debug": LevelDebug, "": LevelOff}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("invalid level accepted")
	}
}

func TestShouldEmit(t *testing.T) {
	if LevelPhase.ShouldEmit(ScopeCall) {
		t.Fatalf("phase level emits calls")
	}
	if !LevelDetail.ShouldEmit(ScopeCall) || LevelDetail.ShouldEmit(ScopeInstr) {
		t.Fatalf("detail level scope filter wrong")
	}
	if !LevelDebug.ShouldEmit(ScopeInstr) {
		t.Fatalf("debug level drops instructions")
	}
	if LevelError.ShouldEmit(ScopeDriver) {
		t.Fatalf("error level emits regular events")
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff, Mode: ModeStream})
	if err != nil || tr.Enabled() {
		t.Fatalf("expected disabled tracer, got %v %v", tr, err)
	}
}

func TestStreamSpan(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	span := Begin(tr, ScopePhase, "lower", 0)
	span.WithExtra("functions", "2").End("ok")
	Point(tr, ScopeInstr, "dropped", "")

	out := buf.String()
	if !strings.Contains(out, "→ lower") || !strings.Contains(out, "← lower (ok) {functions=2}") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "dropped") {
		t.Fatalf("instruction event passed phase level:\n%s", out)
	}
}

func TestNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeInstr, "ADD", "ip=3")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"name":"ADD"`) {
		t.Fatalf("unexpected ndjson %q", buf.String())
	}
}

func TestRingWrapsAndDumps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeInstr, name, "")
	}
	snap := ring.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("unexpected dump %q", buf.String())
	}
}

func TestErrorEventsPassErrorLevel(t *testing.T) {
	ring := NewRingTracer(4, LevelError)
	Point(ring, ScopeDriver, "ignored", "")
	Error(ring, ScopeCall, "run", errors.New("boom"))
	snap := ring.Snapshot()
	if len(snap) != 1 || snap[0].Kind != KindError || snap[0].Detail != "boom" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestBothModeExposesRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDebug, Mode: ModeBoth, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Point(tr, ScopeCall, "call", "")
	ring, ok := Ring(tr)
	if !ok || len(ring.Snapshot()) != 1 {
		t.Fatalf("ring not reachable or empty")
	}
	if buf.Len() == 0 {
		t.Fatalf("stream side received nothing")
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
	ring := NewRingTracer(1, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatalf("tracer not propagated")
	}
}
