// Package validation provides Laravel-style rule-string validation for the
// flat string maps the container builder and the inspector deal in.
//
// # Basic Usage
//
//	v := validation.Make(map[string]string{
//	    "name":     "mailer",
//	    "priority": "20",
//	}, validation.Rules{
//	    "name":     "required|not_contains:/|max:128",
//	    "priority": "sometimes|integer",
//	})
//
//	if err := v.Validate(); err != nil {
//	    // err is *Errors; JSON: {"errors": {"field": ["message"]}}
//	}
//
// # Available Rules
//
//   - required          field must be present and non-empty
//   - sometimes         skips remaining rules silently if the field is empty
//   - nullable          same as sometimes
//   - integer           parseable as int
//   - boolean           true/false/1/0 (case-insensitive)
//   - max:n             at most n UTF-8 characters
//   - in:a,b,c          value must be in the comma-separated list
//   - not_contains:s    value must not contain s
//   - alpha_dash        letters, numbers, dashes, underscores
//   - path              namespace path such as "/db/replicas"
//   - regex:pattern     must match the pattern
//
// Rules for a field stop at the first failure. Fields are checked in sorted
// order, so messages are stable.
package validation
