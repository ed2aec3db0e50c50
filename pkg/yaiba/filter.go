package yaiba

// compiledFilter holds the type filter of a Parser.
type compiledFilter struct {
	include map[TypeID]struct{}
	exclude map[TypeID]struct{}
}

// newCompiledFilter creates a compiledFilter from include and exclude slices.
// Returns nil if both slices are empty (no filtering needed).
func newCompiledFilter(include, exclude []TypeID) *compiledFilter {
	if len(include) == 0 && len(exclude) == 0 {
		return nil
	}
	return &compiledFilter{include: typeSet(include), exclude: typeSet(exclude)}
}

func typeSet(types []TypeID) map[TypeID]struct{} {
	if len(types) == 0 {
		return nil
	}
	set := make(map[TypeID]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

// Allows returns true if the given type passes the filter.
// If include is non-empty, only types in include are allowed.
// Types in exclude are always rejected (exclude takes precedence).
func (f *compiledFilter) Allows(t TypeID) bool {
	if f == nil {
		return true
	}

	if len(f.include) > 0 {
		if _, ok := f.include[t]; !ok {
			return false
		}
	}

	if _, ok := f.exclude[t]; ok {
		return false
	}

	return true
}
