package container

import (
	"errors"
	"fmt"
	"strings"
)

// ── Sentinel errors ───────────────────────────────────────────────────────────

var (
	// ErrInvalidName is returned for an empty name, or a bare service/alias
	// name that contains the namespace separator.
	ErrInvalidName = errors.New("container: invalid name")

	// ErrAlreadyRegistered is returned when an implementation contract is
	// declared for a name that already has a service.
	ErrAlreadyRegistered = errors.New("container: service already registered")

	// ErrOverrideNotAllowed is returned when rebinding a name whose current
	// entry does not allow override.
	ErrOverrideNotAllowed = errors.New("container: override not allowed")

	// ErrDuplicateNamespace is returned when nesting under a key that is taken.
	ErrDuplicateNamespace = errors.New("container: namespace already nested")

	// ErrEmptyNamespace is returned when nesting without a namespace.
	ErrEmptyNamespace = errors.New("container: empty namespace")

	// ErrNamespaceNotFound is returned by From for an unknown path segment.
	ErrNamespaceNotFound = errors.New("container: namespace not found")

	// ErrAlreadyNested is returned when the container to nest already has a
	// parent, or would become its own ancestor.
	ErrAlreadyNested = errors.New("container: container already nested")

	// ErrVariantMismatch is returned when a capped container is asked to nest
	// a container of another variant.
	ErrVariantMismatch = errors.New("container: nested container variant mismatch")

	ErrServiceNotFound   = errors.New("container: service not found")
	ErrServiceCreate     = errors.New("container: service create failed")
	ErrContractViolation = errors.New("container: implementation contract violated")
	ErrAliasCycle        = errors.New("container: alias cycle detected")
	ErrInvalidContract   = errors.New("container: invalid implementation contract")
	ErrNilInstance       = errors.New("container: service created nil instance")
	ErrInvalidService    = errors.New("container: invalid service entry")

	// ErrResolverPanic is returned when a Resolver panics while looking up a
	// name.
	ErrResolverPanic = errors.New("container: panic during resolve")
)

// ── Typed errors ──────────────────────────────────────────────────────────────

// ServiceNotFoundError carries both the name the caller asked for and the
// name it resolved to through the alias chain.
type ServiceNotFoundError struct {
	Requested string
	Resolved  string
	Namespace string
}

func (e *ServiceNotFoundError) Error() string {
	ns := e.Namespace
	if ns == "" {
		ns = "<root>"
	}
	if e.Resolved != "" && e.Resolved != e.Requested {
		return fmt.Sprintf("container[%s]: service (%s) with alias (%s) was requested but no service could be found",
			ns, e.Resolved, e.Requested)
	}
	return fmt.Sprintf("container[%s]: service (%s) was requested but no service could be found", ns, e.Requested)
}

func (e *ServiceNotFoundError) Is(target error) bool { return target == ErrServiceNotFound }

// ServiceCreateError wraps any failure raised while constructing a service,
// including initializer hook failures.
type ServiceCreateError struct {
	Name string
	Err  error
}

func (e *ServiceCreateError) Error() string {
	return fmt.Sprintf("container: an error was raised while creating (%s); no instance returned: %v", e.Name, e.Err)
}

func (e *ServiceCreateError) Unwrap() error { return e.Err }

func (e *ServiceCreateError) Is(target error) bool { return target == ErrServiceCreate }

// ContractViolationError reports an instance that does not satisfy the
// contract declared with SetImplementation.
type ContractViolationError struct {
	Name     string
	Contract Contract
	Got      string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("container: service with name (%s) must implement (%s); given: %s", e.Name, e.Contract, e.Got)
}

func (e *ContractViolationError) Is(target error) bool { return target == ErrContractViolation }

// AliasCycleError lists the resolution steps that led back to a step already
// visited, e.g. "a -> b -> a".
type AliasCycleError struct {
	Chain []string
}

func (e *AliasCycleError) Error() string {
	return "container: alias cycle detected: " + strings.Join(e.Chain, " -> ")
}

func (e *AliasCycleError) Is(target error) bool { return target == ErrAliasCycle }
