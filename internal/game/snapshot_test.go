package game

import (
	"reflect"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := votingGame(t, 1)
	castAll(t, s, map[int64]ballot{
		2: {target: 1},
		3: {skip: true},
	})
	s.TasksDone = 3

	data, err := EncodeSnapshot(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	restored, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(s, restored) {
		t.Fatalf("round trip diverged:\n got %+v\nwant %+v", restored, s)
	}
}

func TestDecodeEmptySnapshotYieldsFreshLobby(t *testing.T) {
	s, err := DecodeSnapshot(nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Phase != PhaseLobby {
		t.Fatalf("expected lobby, got %q", s.Phase)
	}
	if s.Votes == nil {
		t.Fatal("votes map not initialized")
	}
	if s.Config.MinPlayers == 0 {
		t.Fatal("default rules not applied")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeSnapshot([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDecodeRepairsNilVotes(t *testing.T) {
	s, err := DecodeSnapshot([]byte(`{"phase":"action","round":2,"members":[]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Votes == nil {
		t.Fatal("votes map not repaired")
	}
	if s.Phase != PhaseAction || s.Round != 2 {
		t.Fatalf("fields lost: %+v", s)
	}
}
