package mir

// venv maps a source-level binding name to the MIR Place that
// currently holds it, following the same innermost-first chain as
// internal/types' Env — but values are Places, not Types, since by
// the time we lower we already know everything type-checks.
type venv struct {
	places map[string]Place
	parent *venv
}

func newVenv() *venv { return &venv{places: map[string]Place{}} }

func (v *venv) child() *venv { return &venv{places: map[string]Place{}, parent: v} }

func (v *venv) bind(name string, p Place) { v.places[name] = p }

func (v *venv) lookup(name string) (Place, bool) {
	for s := v; s != nil; s = s.parent {
		if p, ok := s.places[name]; ok {
			return p, true
		}
	}
	return Place{}, false
}
