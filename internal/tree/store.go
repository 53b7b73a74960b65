package tree

// Store is the key/value store of a step. Reads fall back to the enclosing
// steps; writes always go to the step the store was taken from.
type Store struct {
	step *Step
}

func (st Store) Get(key string) (any, bool) {
	for s := st.step; s != nil; s = s.parent {
		if v, ok := s.store[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func (st Store) Set(key string, value any) {
	if st.step == nil {
		return
	}
	st.step.store[key] = value
	st.step.dirty = true
}

func (st Store) Delete(key string) {
	if st.step == nil {
		return
	}
	if _, ok := st.step.store[key]; ok {
		delete(st.step.store, key)
		st.step.dirty = true
	}
}
