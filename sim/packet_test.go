package sim

import "testing"

func TestPacketIDAllocator_NeverReuses(t *testing.T) {
	var a PacketIDAllocator
	seen := make(map[PacketID]bool)
	for i := 0; i < 1000; i++ {
		id := a.Next()
		if seen[id] {
			t.Fatalf("PacketID %d issued twice", id)
		}
		seen[id] = true
	}
	if a.Issued() != 1000 {
		t.Errorf("Issued() = %d, want 1000", a.Issued())
	}
	if got := PacketID(17).String(); got != "17" {
		t.Errorf("String() = %q, want %q", got, "17")
	}
}
