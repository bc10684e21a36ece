package gamevar

import "testing"

func TestSubVarByNameIgnoresCase(t *testing.T) {
	root := NewInt("root", 0)
	root.AddSubVarAsInt("Entrance", 5)

	sv := root.SubVarByName("ENTRANCE")
	if sv == nil {
		t.Fatalf("expected case-insensitive match")
	}
	if sv.Int() != 5 {
		t.Fatalf("expected 5, got %d", sv.Int())
	}
	if root.SubVarByName("missing") != nil {
		t.Fatalf("expected nil for missing name")
	}
}

func TestAddSubVarAppendsToTail(t *testing.T) {
	root := NewInt("root", 0)
	for _, name := range []string{"a", "b", "c"} {
		if !root.AddSubVar(NewInt(name, 0)) {
			t.Fatalf("add %s failed", name)
		}
	}

	if root.SubVarsCount() != 3 {
		t.Fatalf("expected 3 sub vars, got %d", root.SubVarsCount())
	}
	for i, want := range []string{"a", "b", "c"} {
		sv := root.SubVarByIndex(i)
		if sv.Name() != want {
			t.Fatalf("index %d: expected %s, got %s", i, want, sv.Name())
		}
		if sv.Parent() != root {
			t.Fatalf("index %d: expected parent link to root", i)
		}
	}
	if root.SubVarByIndex(3) != nil {
		t.Fatalf("expected nil past the end")
	}
}

func TestAddSubVarAsIntRejectsDuplicate(t *testing.T) {
	root := NewInt("root", 0)
	if root.AddSubVarAsInt("x", 1) == nil {
		t.Fatalf("expected first add to succeed")
	}
	if root.AddSubVarAsInt("X", 2) != nil {
		t.Fatalf("expected duplicate add to fail")
	}
	if root.SubVarsCount() != 1 || root.SubVarAsInt("x") != 1 {
		t.Fatalf("expected tree untouched by failed add")
	}
}

func TestSetSubVarAsInt(t *testing.T) {
	root := NewInt("root", 0)
	root.AddSubVar(NewString("name", "pipe"))

	if !root.SetSubVarAsInt("count", 3) {
		t.Fatalf("expected create to succeed")
	}
	if !root.SetSubVarAsInt("count", 4) {
		t.Fatalf("expected overwrite to succeed")
	}
	if got := root.SubVarAsInt("count"); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if root.SetSubVarAsInt("name", 9) {
		t.Fatalf("expected type mismatch to fail")
	}
	if root.SubVarByName("name").Str() != "pipe" {
		t.Fatalf("expected string var untouched")
	}
	if root.SubVarsCount() != 2 {
		t.Fatalf("expected 2 sub vars, got %d", root.SubVarsCount())
	}
}

func TestSubVarAsIntAmbiguity(t *testing.T) {
	root := NewInt("root", 0)
	root.AddSubVarAsInt("zero", 0)

	if root.SubVarAsInt("zero") != 0 || root.SubVarAsInt("missing") != 0 {
		t.Fatalf("expected zero for both present-zero and missing")
	}

	if v, ok := root.TrySubVarAsInt("zero"); !ok || v != 0 {
		t.Fatalf("expected (0, true), got (%d, %v)", v, ok)
	}
	if _, ok := root.TrySubVarAsInt("missing"); ok {
		t.Fatalf("expected missing to report not ok")
	}
}

func TestRemoveUnlinksAndDestroys(t *testing.T) {
	root := NewInt("root", 0)
	a := root.AddSubVarAsInt("a", 1)
	b := root.AddSubVarAsInt("b", 2)
	c := root.AddSubVarAsInt("c", 3)
	leaf := b.AddSubVarAsInt("leaf", 4)
	aux := NewString("aux", "x")
	b.AddSecondary(aux)

	b.Remove()

	if root.SubVarsCount() != 2 {
		t.Fatalf("expected 2 sub vars, got %d", root.SubVarsCount())
	}
	if root.SubVarByIndex(0) != a || root.SubVarByIndex(1) != c {
		t.Fatalf("expected neighbours relinked in order")
	}
	if b.Parent() != nil || leaf.Parent() != nil || aux.Parent() != nil {
		t.Fatalf("expected removed subtree detached")
	}
	if b.SubVarsCount() != 0 || len(b.Secondary()) != 0 {
		t.Fatalf("expected removed var to drop both child lists")
	}
	if aux.Str() != "" {
		t.Fatalf("expected string payload released")
	}
}

func TestRemoveFromSecondaryList(t *testing.T) {
	root := NewInt("root", 0)
	first := NewInt("s1", 0)
	second := NewInt("s2", 0)
	root.AddSecondary(first)
	root.AddSecondary(second)
	root.AddSubVarAsInt("p", 0)

	first.Remove()

	sec := root.Secondary()
	if len(sec) != 1 || sec[0] != second {
		t.Fatalf("expected only s2 in secondary list, got %v", sec)
	}
	if root.SubVarsCount() != 1 {
		t.Fatalf("expected primary list untouched")
	}
}

func TestAddSubVarRejectsAncestor(t *testing.T) {
	root := NewInt("root", 0)
	child := root.AddSubVarAsInt("child", 0)

	if child.AddSubVar(root) {
		t.Fatalf("expected adding an ancestor to fail")
	}
	if child.AddSubVar(child) {
		t.Fatalf("expected adding self to fail")
	}
}

func TestAddSubVarReparents(t *testing.T) {
	a := NewInt("a", 0)
	b := NewInt("b", 0)
	x := a.AddSubVarAsInt("x", 1)

	b.AddSubVar(x)

	if a.SubVarsCount() != 0 || b.SubVarsCount() != 1 || x.Parent() != b {
		t.Fatalf("expected x moved from a to b")
	}
}

func TestLookupAndPath(t *testing.T) {
	root := NewInt("GAME", 0)
	obj := root.AddSubVarAsInt("OBJSTATES", 0)
	save := obj.AddSubVarAsInt("SAVEGAME", 0)
	save.AddSubVarAsInt("Scene", 1601)

	sv := root.Lookup("objstates/savegame/scene")
	if sv == nil || sv.Int() != 1601 {
		t.Fatalf("expected scene 1601, got %v", sv)
	}
	if sv.Path() != "GAME/OBJSTATES/SAVEGAME/Scene" {
		t.Fatalf("unexpected path %q", sv.Path())
	}
	if root.Lookup("OBJSTATES/none") != nil {
		t.Fatalf("expected nil for missing path")
	}
}

func TestFloatPayload(t *testing.T) {
	v := NewFloat("speed", 1.5)
	if v.Float() != 1.5 {
		t.Fatalf("expected 1.5, got %f", v.Float())
	}
	if v.Value().(float32) != 1.5 {
		t.Fatalf("expected Value to return float32")
	}
}
