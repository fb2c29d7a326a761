package container

import "fmt"

// ── Generics helpers ──────────────────────────────────────────────────────────

// Get calls c.Get and type-asserts the result.
//
//	// Instead of: v, err := c.Get("db"); db := v.(*sql.DB)
//	// Write:      db, err := container.Get[*sql.DB](c, "db")
func Get[T any](c *Container, name string, opts ...Options) (T, error) {
	instance, err := c.Get(name, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return assert[T](name, instance)
}

// Fresh calls c.Fresh and type-asserts the result.
func Fresh[T any](c *Container, name string, opts ...Options) (T, error) {
	instance, err := c.Fresh(name, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return assert[T](name, instance)
}

// MustGet is like Get but panics on any error. Meant for wiring code where a
// missing service is a programming error.
func MustGet[T any](c *Container, name string, opts ...Options) T {
	typed, err := Get[T](c, name, opts...)
	if err != nil {
		panic(err)
	}
	return typed
}

func assert[T any](name string, instance any) (T, error) {
	typed, ok := instance.(T)
	if !ok {
		return typed, &ContractViolationError{Name: name, Contract: TypeOf[T](), Got: fmt.Sprintf("%T", instance)}
	}
	return typed, nil
}
