package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// pass asserts the validator passes for the given data/rules.
func pass(t *testing.T, label string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		assert.False(t, v.Fails(), "errors: %+v", v.Errors().Bag)
	})
}

// fail asserts the validator fails with an error on the given field.
func fail(t *testing.T, label, field string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		assert.False(t, v.Passes(), "expected FAIL on field %q", field)
		assert.NotEmpty(t, v.Errors().First(field), "errors: %+v", v.Errors().Bag)
	})
}

// ── required ─────────────────────────────────────────────────────────────────

func TestValidation_Required(t *testing.T) {
	r := validation.Rules{"name": "required"}

	pass(t, "non-empty value", map[string]string{"name": "mailer"}, r)
	fail(t, "empty string", "name", map[string]string{"name": ""}, r)
	fail(t, "whitespace only", "name", map[string]string{"name": "   "}, r)
	fail(t, "missing key", "name", map[string]string{}, r)
}

func TestValidation_Required_MessageFormat(t *testing.T) {
	v := validation.Make(map[string]string{"name": ""}, validation.Rules{"name": "required"})
	require.True(t, v.Fails())
	assert.Equal(t, "The name field is required.", v.Errors().First("name"))
}

// ── names and paths ──────────────────────────────────────────────────────────

func TestValidation_NotContains(t *testing.T) {
	r := validation.Rules{"name": "required|not_contains:/"}

	pass(t, "bare name", map[string]string{"name": "db.primary"}, r)
	fail(t, "separator", "name", map[string]string{"name": "db/primary"}, r)
}

func TestValidation_Path(t *testing.T) {
	r := validation.Rules{"target": "path"}

	pass(t, "root", map[string]string{"target": "/"}, r)
	pass(t, "relative", map[string]string{"target": "db/primary"}, r)
	pass(t, "absolute", map[string]string{"target": "/db/primary"}, r)
	fail(t, "empty segment", "target", map[string]string{"target": "db//primary"}, r)
	fail(t, "trailing separator", "target", map[string]string{"target": "db/"}, r)
	fail(t, "whitespace", "target", map[string]string{"target": "db/pri mary"}, r)
}

func TestValidation_AlphaDash(t *testing.T) {
	r := validation.Rules{"kind": "alpha_dash"}

	pass(t, "dashes and underscores", map[string]string{"kind": "plugin-loader_v2"}, r)
	fail(t, "dot", "kind", map[string]string{"kind": "a.b"}, r)
}

func TestValidation_Max(t *testing.T) {
	r := validation.Rules{"name": "max:5"}

	pass(t, "exactly 5", map[string]string{"name": "abcde"}, r)
	pass(t, "multibyte counted as runes", map[string]string{"name": "αβγδε"}, r)
	fail(t, "too long", "name", map[string]string{"name": "abcdef"}, r)
}

// ── numbers and choices ──────────────────────────────────────────────────────

func TestValidation_Integer(t *testing.T) {
	r := validation.Rules{"priority": "sometimes|integer"}

	pass(t, "positive", map[string]string{"priority": "20"}, r)
	pass(t, "negative", map[string]string{"priority": "-5"}, r)
	pass(t, "absent with sometimes", map[string]string{}, r)
	fail(t, "float", "priority", map[string]string{"priority": "1.5"}, r)
	fail(t, "word", "priority", map[string]string{"priority": "high"}, r)
}

func TestValidation_Boolean(t *testing.T) {
	r := validation.Rules{"allow_override": "nullable|boolean"}

	pass(t, "true", map[string]string{"allow_override": "TRUE"}, r)
	pass(t, "zero", map[string]string{"allow_override": "0"}, r)
	fail(t, "yes", "allow_override", map[string]string{"allow_override": "maybe"}, r)
}

func TestValidation_In(t *testing.T) {
	r := validation.Rules{"format": "in:text, json"}

	pass(t, "listed", map[string]string{"format": "json"}, r)
	fail(t, "not listed", "format", map[string]string{"format": "yaml"}, r)
}

func TestValidation_Regex(t *testing.T) {
	r := validation.Rules{"name": `regex:^[a-z]+$`}

	pass(t, "match", map[string]string{"name": "abc"}, r)
	fail(t, "no match", "name", map[string]string{"name": "ABC"}, r)
	fail(t, "bad pattern", "name", map[string]string{"name": "abc"}, validation.Rules{"name": "regex:("})
}

// ── bail and error bag ───────────────────────────────────────────────────────

func TestValidation_StopsOnFirstFailurePerField(t *testing.T) {
	v := validation.Make(map[string]string{"name": ""}, validation.Rules{"name": "required|max:1|alpha_dash"})
	require.True(t, v.Fails())
	assert.Len(t, v.Errors().Bag["name"], 1)
}

func TestValidation_ValidateReturnsBag(t *testing.T) {
	v := validation.Make(map[string]string{"b": "", "a": "x/y"}, validation.Rules{
		"a": "not_contains:/",
		"b": "required",
	})

	err := v.Validate()
	require.Error(t, err)

	var bag *validation.Errors
	require.ErrorAs(t, err, &bag)
	assert.Equal(t, []string{`The a may not contain "/".`, "The b field is required."}, bag.All())
	assert.Equal(t, `The a may not contain "/". The b field is required.`, err.Error())

	// running twice does not duplicate messages
	require.True(t, v.Fails())
	assert.Len(t, bag.All(), 2)

	assert.NoError(t, validation.Make(nil, validation.Rules{"x": "sometimes|integer"}).Validate())
}
