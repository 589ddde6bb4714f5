package mqtt

import (
	"fmt"
	"testing"
)

func msg(i int) bufferedMsg {
	return bufferedMsg{topic: "footswitch/events", payload: []byte(fmt.Sprintf("%d", i))}
}

func TestRingBuffer_DrainsInOrder(t *testing.T) {
	r := newRingBuffer(4)
	for i := 0; i < 3; i++ {
		r.push(msg(i))
	}
	if r.len() != 3 {
		t.Fatalf("len: got %d, want 3", r.len())
	}

	out := r.drainAll()
	for i, m := range out {
		if string(m.payload) != fmt.Sprintf("%d", i) {
			t.Errorf("msg %d: got %s", i, m.payload)
		}
	}
	if r.len() != 0 {
		t.Errorf("len after drain: got %d, want 0", r.len())
	}
	if r.drainAll() != nil {
		t.Error("second drain should be nil")
	}
}

func TestRingBuffer_OverflowKeepsNewest(t *testing.T) {
	r := newRingBuffer(3)
	for i := 0; i < 5; i++ {
		r.push(msg(i))
	}
	if r.len() != 3 {
		t.Fatalf("len: got %d, want 3", r.len())
	}
	if r.dropped != 2 {
		t.Errorf("dropped: got %d, want 2", r.dropped)
	}

	out := r.drainAll()
	for i, want := range []string{"2", "3", "4"} {
		if string(out[i].payload) != want {
			t.Errorf("msg %d: got %s, want %s", i, out[i].payload, want)
		}
	}
}

func TestRingBuffer_ReusableAfterDrain(t *testing.T) {
	r := newRingBuffer(2)
	r.push(msg(0))
	r.push(msg(1))
	r.push(msg(2))
	r.drainAll()

	r.push(msg(7))
	out := r.drainAll()
	if len(out) != 1 || string(out[0].payload) != "7" {
		t.Errorf("got %v, want single message 7", out)
	}
}

func TestRingBuffer_PreservesFields(t *testing.T) {
	r := newRingBuffer(2)
	r.push(bufferedMsg{topic: "footswitch/system", payload: []byte("x"), qos: 1, retained: true})

	out := r.drainAll()
	m := out[0]
	if m.topic != "footswitch/system" || m.qos != 1 || !m.retained {
		t.Errorf("got %+v", m)
	}
}

func TestRingBuffer_MinimumCapacity(t *testing.T) {
	r := newRingBuffer(0)
	r.push(msg(0))
	r.push(msg(1))
	out := r.drainAll()
	if len(out) != 1 || string(out[0].payload) != "1" {
		t.Errorf("got %v, want newest only", out)
	}
}
