package filter

import "fmt"

type compiledRule struct {
	include bool
	fieldTest
}

// Compose builds the acceptance predicate for an ordered rule list.
//
// Rules are first combined per field: a field includes when any including
// rule on it matches and excludes when any exclude rule on it matches. A
// record passes when there are no including rules or some field includes,
// and no field excludes. An empty rule list accepts everything.
func Compose(rules []Rule, schema Schema) (Predicate, error) {
	compiled, err := compile(DedupRules(rules), schema)
	if err != nil {
		return nil, err
	}
	if len(compiled) == 0 {
		return func(Record) bool { return true }, nil
	}
	return func(r Record) bool {
		includes := make(map[string]bool)
		excludes := make(map[string]bool)
		for _, c := range compiled {
			matched := c.match(r)
			if c.include {
				includes[c.field] = includes[c.field] || matched
			} else {
				excludes[c.field] = excludes[c.field] || matched
			}
		}
		return (len(includes) == 0 || anyTrue(includes)) && !anyTrue(excludes)
	}, nil
}

// Preferred builds the priority predicate from the prefer and
// force_include rules only. Without such rules nothing is preferred.
func Preferred(rules []Rule, schema Schema) (Predicate, error) {
	priority := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Mode == ModePrefer || r.Mode == ModeForceInclude {
			priority = append(priority, r)
		}
	}
	if len(priority) == 0 {
		return func(Record) bool { return false }, nil
	}
	return Compose(priority, schema)
}

func compile(rules []Rule, schema Schema) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if !r.Mode.valid() {
			return nil, fmt.Errorf("%w: mode %q", ErrInvalidRule, r.Mode)
		}
		test, err := compileFieldTest(schema, r.Field, r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%s rule: %w", r.Mode, err)
		}
		if test == nil {
			continue
		}
		compiled = append(compiled, compiledRule{include: r.Mode.including(), fieldTest: *test})
	}
	return compiled, nil
}

func anyTrue(values map[string]bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}
