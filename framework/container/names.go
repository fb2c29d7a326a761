package container

import (
	"fmt"
	"strings"
	"unicode"
)

// Separator delimits namespaces in a lookup path ("a/b/service").
// A leading separator means "start from the root container".
const Separator = "/"

// normalizer canonicalizes raw names. Results are memoized per raw input for
// the lifetime of the owning container.
type normalizer struct {
	names      map[string]string
	namespaces map[string]string
}

func newNormalizer() *normalizer {
	return &normalizer{
		names:      make(map[string]string),
		namespaces: make(map[string]string),
	}
}

// name normalizes a bare service, alias or namespace key. The result is
// lower-case, whitespace-free and never contains the separator.
func (n *normalizer) name(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: name must be a non-empty string", ErrInvalidName)
	}
	if cName, ok := n.names[raw]; ok {
		return cName, nil
	}

	cName := canonical(raw)
	if cName == "" {
		return "", fmt.Errorf("%w: name (%q) is blank", ErrInvalidName, raw)
	}
	if strings.Contains(cName, Separator) {
		return "", fmt.Errorf("%w: service or alias name (%s) can't contain separator (%s)", ErrInvalidName, raw, Separator)
	}

	n.names[raw] = cName
	return cName, nil
}

// path normalizes a namespace path. Separators are legal here.
func (n *normalizer) path(raw string) string {
	if cPath, ok := n.namespaces[raw]; ok {
		return cPath
	}
	cPath := canonical(raw)
	n.namespaces[raw] = cPath
	return cPath
}

func canonical(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case unicode.IsSpace(r):
			continue
		case r == '\\':
			b.WriteString(Separator)
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
