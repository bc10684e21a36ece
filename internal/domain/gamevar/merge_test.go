package gamevar

import "testing"

func TestMergeCopiesMatchingValues(t *testing.T) {
	loaded := NewInt("OBJSTATES", 0)
	loaded.AddSubVarAsInt("Door", 2)
	loaded.AddSubVar(NewString("Note", "open"))

	live := NewInt("OBJSTATES", 0)
	live.AddSubVarAsInt("Door", 0)
	live.AddSubVar(NewString("Note", "closed"))

	Merge(loaded, live)

	if live.SubVarAsInt("Door") != 2 {
		t.Fatalf("expected Door 2, got %d", live.SubVarAsInt("Door"))
	}
	if live.SubVarByName("Note").Str() != "open" {
		t.Fatalf("expected Note open, got %q", live.SubVarByName("Note").Str())
	}
}

func TestMergeKeepsNewLiveFieldsAtDefault(t *testing.T) {
	old := NewInt("OBJSTATES", 0)
	old.AddSubVarAsInt("Door", 2)

	live := NewInt("OBJSTATES", 0)
	live.AddSubVarAsInt("Door", 0)
	live.AddSubVarAsInt("NewField", 42)

	Merge(old, live)

	if live.SubVarAsInt("NewField") != 42 {
		t.Fatalf("expected NewField to keep default 42, got %d", live.SubVarAsInt("NewField"))
	}
	if live.SubVarAsInt("Door") != 2 {
		t.Fatalf("expected Door 2, got %d", live.SubVarAsInt("Door"))
	}
}

func TestMergeSkipsTypeConflict(t *testing.T) {
	loaded := NewInt("root", 0)
	loaded.AddSubVar(NewString("X", "text"))

	live := NewInt("root", 0)
	live.AddSubVarAsInt("X", 7)

	Merge(loaded, live)

	x := live.SubVarByName("X")
	if x.Type() != TypeInt || x.Int() != 7 {
		t.Fatalf("expected X to stay int 7, got %v", x)
	}
}

func TestMergeCreatesMissingBranches(t *testing.T) {
	loaded := NewInt("root", 0)
	save := loaded.AddSubVarAsInt("SAVEGAME", 0)
	save.AddSubVarAsInt("Scene", 1601)
	save.AddSubVar(NewFloat("Zoom", 0.5))

	live := NewInt("root", 0)
	Merge(loaded, live)

	if got := live.Lookup("SAVEGAME/Scene"); got == nil || got.Int() != 1601 {
		t.Fatalf("expected created SAVEGAME/Scene 1601, got %v", got)
	}
	if got := live.Lookup("SAVEGAME/Zoom"); got == nil || got.Type() != TypeFloat || got.Float() != 0.5 {
		t.Fatalf("expected created float Zoom 0.5, got %v", got)
	}
}

func TestMergePreservesLiveIdentity(t *testing.T) {
	live := NewInt("root", 0)
	branch := live.AddSubVarAsInt("branch", 0)
	untouched := live.AddSubVarAsInt("untouched", 9)

	loaded := NewInt("root", 0)
	loaded.AddSubVarAsInt("branch", 3)

	Merge(loaded, live)

	if live.SubVarByName("branch") != branch || live.SubVarByName("untouched") != untouched {
		t.Fatalf("expected live nodes to be updated in place")
	}
	if untouched.Int() != 9 {
		t.Fatalf("expected untouched branch to keep 9, got %d", untouched.Int())
	}
}

func TestMergeNilIsNoop(t *testing.T) {
	live := NewInt("root", 1)
	Merge(nil, live)
	Merge(NewInt("root", 5), nil)
	if live.Int() != 1 {
		t.Fatalf("expected live untouched")
	}
}
