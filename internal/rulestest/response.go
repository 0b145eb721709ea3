package rulestest

import "fmt"

// RuleBlock renders one well-formed generation response block.
func RuleBlock(id, name, description, policyRef, appliesTo, code string) string {
	return fmt.Sprintf(`---RULE START---
RULE_ID: %s
RULE_NAME: %s
DESCRIPTION: %s
POLICY_REF: %s
APPLIES_TO: %s
`+"```python\n%s\n```"+`
---RULE END---`, id, name, description, policyRef, appliesTo, code)
}

// SimpleRuleBlock renders a block with placeholder descriptive fields.
func SimpleRuleBlock(id, code string) string {
	return RuleBlock(id, "Rule "+id, "Test rule "+id, "Section 1", "ALL", code)
}
