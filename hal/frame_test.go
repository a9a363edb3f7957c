package hal

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewFrameWriter(&buf)
	w.LogFrame(2, []byte("boot"))
	w.LogFrame(0, nil)
	w.LogFrame(7, []byte{0x00, 0xff})

	r := NewFrameReader(&buf)
	want := []Frame{
		{Task: 2, Payload: []byte("boot")},
		{Task: 0, Payload: []byte{}},
		{Task: 7, Payload: []byte{0x00, 0xff}},
	}
	for i, wf := range want {
		f, err := r.Next()
		if err != nil {
			t.Fatalf("Next() #%d: %v", i, err)
		}
		if f.Task != wf.Task || !bytes.Equal(f.Payload, wf.Payload) {
			t.Fatalf("frame #%d = {%d %q}, want {%d %q}", i, f.Task, f.Payload, wf.Task, wf.Payload)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("Next() at end = %v, want io.EOF", err)
	}
}

func TestFrameReaderTruncated(t *testing.T) {
	// Header promises 5 payload bytes, stream carries 2.
	r := NewFrameReader(bytes.NewReader([]byte{1, 5, 'a', 'b'}))
	if _, err := r.Next(); err != io.ErrUnexpectedEOF {
		t.Fatalf("Next() = %v, want io.ErrUnexpectedEOF", err)
	}

	// Stream ends after the task byte.
	r = NewFrameReader(bytes.NewReader([]byte{1}))
	if _, err := r.Next(); err != io.ErrUnexpectedEOF {
		t.Fatalf("Next() = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestHostTimerDelivers(t *testing.T) {
	tm := NewHostTimer(1000)
	defer tm.Stop()

	select {
	case seq := <-tm.Ticks():
		if seq == 0 {
			t.Fatal("tick sequence starts at 0, want 1-based")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no tick delivered")
	}
}
