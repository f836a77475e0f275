package dialect

import "regexp"

// RewriteRule is one regex substitution applied, in order, over SQL text
// already rendered against the native Operators implementation -- a pure
// function over the compiled SQL: the compiler never re-renders per target,
// a rewrite table just projects the native surface onto a backend's
// dialect afterward.
type RewriteRule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Rewriter applies an ordered table of RewriteRules to a block of SQL.
type Rewriter struct {
	Rules []RewriteRule
}

// Rewrite applies every rule in order and returns the transformed SQL.
func (r Rewriter) Rewrite(sql string) (string, error) {
	out := sql
	for _, rule := range r.Rules {
		out = rule.Pattern.ReplaceAllString(out, rule.Replacement)
	}
	return out, nil
}

func rule(name, pattern, replacement string) RewriteRule {
	return RewriteRule{Name: name, Pattern: regexp.MustCompile(pattern), Replacement: replacement}
}
