package memory

import "github.com/google/uuid"

// matches compares a stored column against a filter value with SQL equality:
// nil matches NULL, pointers compare by pointee.
func matches(column, value any) bool {
	column, value = deref(column), deref(value)
	if column == nil || value == nil {
		return column == nil && value == nil
	}
	return column == value
}

func deref(v any) any {
	switch p := v.(type) {
	case *uuid.UUID:
		if p == nil {
			return nil
		}
		return *p
	case *string:
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}
