package container

import "reflect"

// Contract is an implementation contract: an interface the instance must
// implement, or a concrete type the instance must be assignable to.
type Contract struct {
	t reflect.Type
}

// InterfaceOf returns the contract "instance implements T". T must be an
// interface type.
//
//	c.SetImplementation("logger", container.InterfaceOf[Logger]())
func InterfaceOf[T any]() Contract {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Interface {
		panic("container: InterfaceOf requires an interface type, got " + t.String())
	}
	return Contract{t: t}
}

// TypeOf returns the contract "instance is a T".
//
//	c.SetImplementation("db", container.TypeOf[*sql.DB]())
func TypeOf[T any]() Contract {
	return Contract{t: reflect.TypeOf((*T)(nil)).Elem()}
}

// ContractFor builds a contract from a reflect.Type.
func ContractFor(t reflect.Type) Contract { return Contract{t: t} }

// IsZero reports whether the contract is unset.
func (ct Contract) IsZero() bool { return ct.t == nil }

// Type returns the underlying type.
func (ct Contract) Type() reflect.Type { return ct.t }

func (ct Contract) String() string {
	if ct.t == nil {
		return "<none>"
	}
	return ct.t.String()
}

// Satisfied reports whether instance honours the contract.
func (ct Contract) Satisfied(instance any) bool {
	if ct.t == nil {
		return true
	}
	if instance == nil {
		return false
	}
	it := reflect.TypeOf(instance)
	if ct.t.Kind() == reflect.Interface {
		return it.Implements(ct.t)
	}
	return it.AssignableTo(ct.t)
}
