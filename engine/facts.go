package engine

// Scope selects which fact set an operation addresses. The two sets
// are disjoint namespaces: an ephemeral fact never satisfies a
// persistent check, and vice versa.
type Scope int

const (
	Ephemeral Scope = iota
	Persistent
)

func (s Scope) String() string {
	if s == Persistent {
		return "persistent"
	}
	return "ephemeral"
}

// FactStorage is the durable backing for persistent facts. The store
// calls Persist on every persistent mutation so a crash loses at most
// the current statement's effect.
type FactStorage interface {
	LoadAll() ([]string, error)
	Persist(name string, present bool) error
}

// FactStore holds the ephemeral and persistent fact sets for one run.
// A fact's identity is its exact resolved text, compared
// case-sensitively with no trimming. Insert and Remove are idempotent.
type FactStore struct {
	ephemeral  map[string]struct{}
	persistent map[string]struct{}
	storage    FactStorage
}

// NewFactStore builds a store, preloading persistent facts from
// storage. A nil storage keeps persistent facts in memory only.
func NewFactStore(storage FactStorage) (*FactStore, error) {
	fs := &FactStore{
		ephemeral:  map[string]struct{}{},
		persistent: map[string]struct{}{},
		storage:    storage,
	}
	if storage != nil {
		names, err := storage.LoadAll()
		if err != nil {
			return nil, &CollaboratorError{Resource: "fact storage", Err: err}
		}
		for _, name := range names {
			fs.persistent[name] = struct{}{}
		}
	}
	return fs, nil
}

// Contains tests membership in the scoped set.
func (f *FactStore) Contains(name string, scope Scope) bool {
	_, ok := f.set(scope)[name]
	return ok
}

// Insert adds the fact. Inserting a present fact is a no-op, but the
// persistent flush still happens.
func (f *FactStore) Insert(name string, scope Scope) error {
	f.set(scope)[name] = struct{}{}
	return f.flush(name, scope, true)
}

// Remove deletes the fact. Removing an absent fact is a no-op, but the
// persistent flush still happens.
func (f *FactStore) Remove(name string, scope Scope) error {
	delete(f.set(scope), name)
	return f.flush(name, scope, false)
}

// Toggle flips the fact's presence and reports the new state. It backs
// the swap-fact statement.
func (f *FactStore) Toggle(name string, scope Scope) (bool, error) {
	if f.Contains(name, scope) {
		return false, f.Remove(name, scope)
	}
	return true, f.Insert(name, scope)
}

func (f *FactStore) set(scope Scope) map[string]struct{} {
	if scope == Persistent {
		return f.persistent
	}
	return f.ephemeral
}

func (f *FactStore) flush(name string, scope Scope, present bool) error {
	if scope != Persistent || f.storage == nil {
		return nil
	}
	if err := f.storage.Persist(name, present); err != nil {
		return &CollaboratorError{Resource: "fact storage", Err: err}
	}
	return nil
}
