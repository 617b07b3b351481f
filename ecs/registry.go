package ecs

// Registry owns values of one type behind generational handles. Destroyed
// handles stay invalid even after their slot is reused.
type Registry[T any] struct {
	store entityStore
	set   SparseSet[T]
	order []entityID
}

// Create stores v and returns its new handle.
func (r *Registry[T]) Create(v T) Entity {
	e := r.store.create()
	r.set.Set(e.id(), v)
	r.order = append(r.order, e.id())
	return e
}

// Get resolves a handle. Stale or unknown handles report false.
func (r *Registry[T]) Get(e Entity) (T, bool) {
	var zero T
	if r == nil || !r.store.isAlive(e) {
		return zero, false
	}
	return r.set.Get(e.id())
}

// Replace overwrites the value behind a live handle.
func (r *Registry[T]) Replace(e Entity, v T) bool {
	if !r.store.isAlive(e) {
		return false
	}
	r.set.Set(e.id(), v)
	return true
}

func (r *Registry[T]) Alive(e Entity) bool {
	return r != nil && r.store.isAlive(e)
}

// Destroy invalidates the handle and frees its slot.
func (r *Registry[T]) Destroy(e Entity) bool {
	if !r.store.destroy(e) {
		return false
	}
	r.set.Remove(e.id())
	for i, id := range r.order {
		if id == e.id() {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Entities returns live handles in creation order.
func (r *Registry[T]) Entities() []Entity {
	if r == nil {
		return nil
	}
	out := make([]Entity, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.store.current(id))
	}
	return out
}

// Each visits live values in creation order. fn may create or destroy
// entries; entries destroyed before their turn are skipped and entries
// created during the walk are not visited.
func (r *Registry[T]) Each(fn func(Entity, T)) {
	for _, e := range r.Entities() {
		v, ok := r.Get(e)
		if !ok {
			continue
		}
		fn(e, v)
	}
}

func (r *Registry[T]) Len() int {
	if r == nil {
		return 0
	}
	return r.set.Len()
}
