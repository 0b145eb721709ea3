package generator

import (
	"fmt"
	"strings"
)

const ruleTemplate = `---RULE START---
RULE_ID: <machine_id>
RULE_NAME: <human readable>
DESCRIPTION: <concise explanation>
POLICY_REF: <policy section reference>
APPLIES_TO: <comma separated roles or ALL>
` + "```python" + `
def rule(employee, security, trade_date):
    """Explain what the rule enforces."""
    # logic that returns {"allowed": bool, "reason": str | None, "policy_ref": str | None}
` + "```" + `
---RULE END---`

// buildInitialPrompt builds the prompt for first-pass rule generation from
// policy text.
func buildInitialPrompt(firmName, policyText string) string {
	var b strings.Builder

	b.WriteString("You are an expert compliance engineer. Convert the provided policy text into executable Python compliance rules.\n")
	b.WriteString("Rules must follow this exact template:\n")
	b.WriteString(ruleTemplate)
	b.WriteString("\n\nConstraints:\n")
	b.WriteString("- Only use Python stdlib.\n")
	b.WriteString("- Do NOT import os, subprocess, pathlib, sys, or perform IO.\n")
	b.WriteString("- Return a dict with boolean `allowed`, optional `reason`, and optional `policy_ref`.\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Firm: %s\n", firmName)
	b.WriteString("Policy text:\n")
	b.WriteString(policyText)

	return b.String()
}

// buildRegenerationPrompt builds the prompt for refining a rule that failed
// validation. It embeds the prior source, the validator's error, and the raw
// test output, and instructs the service to keep the rule's intent while
// fixing the specific defect.
func buildRegenerationPrompt(firmName, policyText, priorCode, priorError, testResults string) string {
	var b strings.Builder

	b.WriteString("You are refining an existing compliance rule based on validator feedback.\n")
	b.WriteString("Original policy text and firm context remain the same.\n")
	b.WriteString("Revise the rule while keeping the same intent.\n\n")
	b.WriteString("Previous attempt code:\n")
	b.WriteString("```python\n")
	b.WriteString(strings.TrimSpace(priorCode))
	b.WriteString("\n```\n\n")
	b.WriteString("Validator error details:\n")
	b.WriteString(priorError)
	b.WriteString("\n\nTest results / runtime output:\n")
	b.WriteString(testResults)
	b.WriteString("\n\nReturn ONLY properly formatted rules using the previously defined schema. Do not include commentary.\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Firm: %s\n", firmName)
	b.WriteString("Policy text:\n")
	b.WriteString(policyText)

	return b.String()
}
