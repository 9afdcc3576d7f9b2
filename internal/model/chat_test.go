package model

import "testing"

func TestPairKey_orderInsensitive(t *testing.T) {
	if PairKey(2, 9) != PairKey(9, 2) {
		t.Error("pair key must not depend on argument order")
	}
	if got := PairKey(9, 2); got != "2:9" {
		t.Errorf("pair key = %q, want %q", got, "2:9")
	}
	if got := PairKey(7, 7); got != "7:7" {
		t.Errorf("pair key = %q, want %q", got, "7:7")
	}
}

func TestChat_HasParticipant(t *testing.T) {
	c := Chat{Participants: []uint64{1, 5, 8}}
	if !c.HasParticipant(5) {
		t.Error("5 should be a participant")
	}
	if c.HasParticipant(2) {
		t.Error("2 should not be a participant")
	}
	empty := Chat{}
	if empty.HasParticipant(1) {
		t.Error("empty chat has no participants")
	}
}
