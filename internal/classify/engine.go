package classify

import (
	"fmt"

	"github.com/jonathan/lesson-factory/internal/config"
	"github.com/jonathan/lesson-factory/internal/logging"
	"github.com/jonathan/lesson-factory/internal/types"
)

// Engine evaluates the rule cascade over item batches. The rule list is
// fixed at construction; identical input always yields identical output.
type Engine struct {
	ruleset *config.Ruleset
	rules   []Rule
}

// supportRecord remembers what one non-decisive rule supported, for
// ambiguity detection after a tertiary decision.
type supportRecord struct {
	ruleID     string
	tier       string
	categories []string
}

// NewEngine creates a rule engine bound to a validated ruleset.
func NewEngine(rs *config.Ruleset) *Engine {
	return &Engine{
		ruleset: rs,
		rules:   defaultRules(),
	}
}

// ClassifyBatch assigns every item to exactly one category and derives the
// batch-level invariant data. A rule implementation fault aborts the whole
// batch after one retry; partial assignments are never returned.
func (e *Engine) ClassifyBatch(items []types.Item) (*types.AssignmentSet, error) {
	if len(items) == 0 {
		return nil, &ClassificationError{Message: "empty item batch"}
	}

	seen := make(map[int]bool, len(items))
	for _, item := range items {
		if seen[item.ID] {
			return nil, &ClassificationError{Message: fmt.Sprintf("duplicate item id %d", item.ID)}
		}
		seen[item.ID] = true
	}

	cx := buildBatchContext(items, e.ruleset)

	assignments := make([]types.Assignment, 0, len(items))
	for _, item := range items {
		assignment, err := e.classifyWithRetry(item, cx)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}

	if len(assignments) != len(items) {
		return nil, &ClassificationError{
			Message: fmt.Sprintf("assigned %d of %d items", len(assignments), len(items)),
		}
	}

	counts := make(map[string]int, len(e.ruleset.Categories))
	for _, cat := range e.ruleset.Categories {
		counts[cat.ID] = 0
	}
	for _, a := range assignments {
		counts[a.Category]++
	}

	var under []string
	for _, cat := range e.ruleset.Categories {
		if counts[cat.ID] < cat.MinItems {
			under = append(under, cat.ID)
			logging.Warnw("category below minimum population",
				"category", cat.ID, "count", counts[cat.ID], "minimum", cat.MinItems)
		}
	}

	return &types.AssignmentSet{
		Assignments:    assignments,
		CategoryCounts: counts,
		UnderPopulated: under,
	}, nil
}

// Classify runs the cascade for a single item against a context built from
// its batch. Exposed for targeted re-classification and tests; batch
// invariants only hold through ClassifyBatch.
func (e *Engine) Classify(item types.Item, cx *BatchContext) (types.Assignment, error) {
	return e.classifyWithRetry(item, cx)
}

// NewBatchContext builds the batch-level context for a set of items.
func (e *Engine) NewBatchContext(items []types.Item) *BatchContext {
	return buildBatchContext(items, e.ruleset)
}

// classifyWithRetry gives a faulting rule one retry before surfacing the
// fault. Rules are pure, so a second identical fault is an implementation
// error and aborts the batch.
func (e *Engine) classifyWithRetry(item types.Item, cx *BatchContext) (types.Assignment, error) {
	assignment, err := e.classifyItem(item, cx)
	if err == nil {
		return assignment, nil
	}
	logging.Warnw("rule fault, retrying once", "item", item.ID, "error", err)

	assignment, retryErr := e.classifyItem(item, cx)
	if retryErr != nil {
		return types.Assignment{}, retryErr
	}
	return assignment, nil
}

// classifyItem walks the cascade in declared order and stops at the first
// decisive rule. The terminal forced rule guarantees a decision.
func (e *Engine) classifyItem(item types.Item, cx *BatchContext) (types.Assignment, error) {
	var records []supportRecord

	for _, rule := range e.rules {
		decision, err := evalRuleSafe(rule, item, e.ruleset, cx)
		if err != nil {
			return types.Assignment{}, err
		}

		if decision.Category != "" {
			if e.ruleset.CategoryByID(decision.Category) == nil {
				return types.Assignment{}, &ClassificationError{
					Message: fmt.Sprintf("rule chose unknown category %q", decision.Category),
					Rule:    rule.ID,
				}
			}
			assignment := types.Assignment{
				ItemID:   item.ID,
				Category: decision.Category,
				RuleID:   rule.ID,
				RuleTier: rule.Tier,
			}
			assignment.Flags = deriveFlags(item, e.ruleset, cx, assignment, decision, rule, records)
			return assignment, nil
		}

		if len(decision.Supported) > 0 {
			records = append(records, supportRecord{
				ruleID:     rule.ID,
				tier:       rule.Tier,
				categories: decision.Supported,
			})
		}
	}

	// Unreachable while the forced tertiary rule is last in the cascade.
	return types.Assignment{}, &ClassificationError{
		Message: fmt.Sprintf("no rule decided item %d", item.ID),
	}
}

// evalRuleSafe converts a rule panic into an error so one bad rule cannot
// take down the process with half a batch emitted.
func evalRuleSafe(rule Rule, item types.Item, rs *config.Ruleset, cx *BatchContext) (decision Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ClassificationError{
				Message: fmt.Sprintf("rule panicked on item %d", item.ID),
				Rule:    rule.ID,
				Cause:   fmt.Errorf("%v", r),
			}
		}
	}()
	return rule.Eval(item, rs, cx), nil
}
