package gamevar

// Merge overlays the values of loaded onto live, depth-first, and never
// fails. Sub-variables missing from live are created with the loaded type
// and a zero value before the copy. A value is copied only when both type
// tags agree, so live variables whose type changed since the save was made
// keep their current value. Live variables absent from loaded are left
// alone, and the secondary lists are not touched.
func Merge(loaded, live *Var) {
	if loaded == nil || live == nil {
		return
	}

	if loaded.typ == live.typ {
		live.bits = loaded.bits
		live.str = loaded.str
	}

	for _, c := range loaded.subVars {
		t := live.SubVarByName(c.name)
		if t == nil {
			t = &Var{name: c.name, typ: c.typ}
			live.AddSubVar(t)
		}
		Merge(c, t)
	}
}
