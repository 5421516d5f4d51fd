package viewmodel

// Keyed is implemented by records and enrichments. Key identifies the
// underlying entity; enrichments use the key of the record they describe.
type Keyed interface {
	Key() string
}

// RecordList is an insertion-ordered list in which each key appears at most once.
// It is not safe for concurrent use.
type RecordList[T Keyed] struct {
	items []T
	index map[string]int
}

// NewRecordList returns an empty list.
func NewRecordList[T Keyed]() *RecordList[T] {
	return &RecordList[T]{index: make(map[string]int)}
}

// Merge appends every item whose key is not already present, in order, and
// reports whether anything was appended. Duplicates inside items are
// collapsed to their first occurrence.
func (l *RecordList[T]) Merge(items []T) bool {
	appended := false
	for _, item := range items {
		key := item.Key()
		if _, seen := l.index[key]; seen {
			continue
		}
		l.index[key] = len(l.items)
		l.items = append(l.items, item)
		appended = true
	}
	return appended
}

// Reset empties the list.
func (l *RecordList[T]) Reset() {
	l.items = nil
	l.index = make(map[string]int)
}

// Len returns the number of records.
func (l *RecordList[T]) Len() int {
	return len(l.items)
}

// Contains reports whether key is present.
func (l *RecordList[T]) Contains(key string) bool {
	_, ok := l.index[key]
	return ok
}

// Get returns the record stored under key.
func (l *RecordList[T]) Get(key string) (T, bool) {
	i, ok := l.index[key]
	if !ok {
		var zero T
		return zero, false
	}
	return l.items[i], true
}

// Items returns a copy of the records in insertion order.
func (l *RecordList[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}
