package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/km-arc/go-ioc/framework/validation"
)

// ValidationError lists every problem found in a definition tree.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "builder: invalid definition: " + strings.Join(e.Problems, "; ")
}

// Validate checks the shape of def and its nested definitions without
// touching a container. Unknown catalog keys are reported by Build.
func Validate(def *Definition) error {
	var problems []string
	validate(def, "/", &problems)
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validate(def *Definition, where string, problems *[]string) {
	check := func(data map[string]string, rules validation.Rules) {
		v := validation.Make(data, rules)
		if v.Fails() {
			for _, msg := range v.Errors().All() {
				*problems = append(*problems, where+": "+msg)
			}
		}
	}

	check(map[string]string{"namespace": def.Namespace},
		validation.Rules{"namespace": "sometimes|not_contains:/"})

	for _, name := range sortedKeys(def.Implementations) {
		check(map[string]string{"implementation": name, "contract": def.Implementations[name]},
			validation.Rules{"implementation": "required|not_contains:/", "contract": "required"})
	}

	for i, init := range def.Initializers {
		field := fmt.Sprintf("initializers.%d", i)
		check(map[string]string{field: init.Initializer, field + ".priority": init.Priority},
			validation.Rules{field: "required", field + ".priority": "sometimes|integer"})
	}

	for _, alias := range sortedKeys(def.Extends) {
		check(map[string]string{"alias": alias, "target": def.Extends[alias]},
			validation.Rules{"alias": "required|not_contains:/", "target": "required|path"})
	}

	for i, svc := range def.Services {
		field := fmt.Sprintf("services.%d", i)
		check(map[string]string{field + ".name": svc.Name, field + ".kind": svc.Kind},
			validation.Rules{field + ".name": "required|not_contains:/", field + ".kind": "required"})
		for j, dep := range svc.Deps {
			dfield := fmt.Sprintf("%s.deps.%d", field, j)
			check(map[string]string{dfield: strings.TrimPrefix(dep, "?")},
				validation.Rules{dfield: "required|path"})
		}
	}

	for _, ns := range sortedKeys(def.Nested) {
		check(map[string]string{"nested": ns}, validation.Rules{"nested": "required|not_contains:/"})
		if def.Nested[ns] == nil {
			continue
		}
		validate(def.Nested[ns], strings.TrimSuffix(where, "/")+"/"+ns, problems)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
