package generator

import (
	"regexp"
	"strings"

	"mercator-hq/themis/pkg/rules"
)

// Response grammar markers.
const (
	blockStart = "---RULE START---"
	blockEnd   = "---RULE END---"
)

var (
	fieldPatterns = map[string]*regexp.Regexp{
		"RULE_ID":     regexp.MustCompile(`(?m)^RULE_ID:[ \t]*(.+)$`),
		"RULE_NAME":   regexp.MustCompile(`(?m)^RULE_NAME:[ \t]*(.+)$`),
		"DESCRIPTION": regexp.MustCompile(`(?m)^DESCRIPTION:[ \t]*(.+)$`),
		"POLICY_REF":  regexp.MustCompile(`(?m)^POLICY_REF:[ \t]*(.+)$`),
		"APPLIES_TO":  regexp.MustCompile(`(?m)^APPLIES_TO:[ \t]*(.+)$`),
	}

	codeFencePattern = regexp.MustCompile("(?s)```(?:python)?\n?(.*?)```")
)

// BlockOutcome classifies the parse result for a single response block.
type BlockOutcome int

const (
	// BlockWellFormed means the block parsed into a candidate rule.
	BlockWellFormed BlockOutcome = iota

	// BlockMalformed means the block was missing a required field or code
	// segment and was skipped.
	BlockMalformed
)

// ParsedBlock is the discriminated parse result for one response block.
type ParsedBlock struct {
	// Outcome classifies the block.
	Outcome BlockOutcome

	// Rule is the candidate rule, set only for well-formed blocks.
	Rule *rules.Rule

	// Missing names the grammar elements absent from a malformed block.
	Missing []string
}

// ParseResponse scans a provider response for rule blocks and parses each
// against the grammar. It returns one ParsedBlock per block found; a
// response with no blocks yields an empty slice, never an error.
func ParseResponse(response string) []ParsedBlock {
	segments := strings.Split(response, blockStart)
	if len(segments) < 2 {
		return nil
	}

	blocks := make([]ParsedBlock, 0, len(segments)-1)
	for _, segment := range segments[1:] {
		body, _, found := strings.Cut(segment, blockEnd)
		if !found {
			blocks = append(blocks, ParsedBlock{
				Outcome: BlockMalformed,
				Missing: []string{blockEnd},
			})
			continue
		}
		blocks = append(blocks, parseBlock(body))
	}
	return blocks
}

// parseBlock parses one block body against the grammar.
func parseBlock(body string) ParsedBlock {
	var missing []string

	fields := make(map[string]string, len(fieldPatterns))
	for name, pattern := range fieldPatterns {
		match := pattern.FindStringSubmatch(body)
		if match == nil || strings.TrimSpace(match[1]) == "" {
			missing = append(missing, name)
			continue
		}
		fields[name] = strings.TrimSpace(match[1])
	}

	fences := codeFencePattern.FindAllStringSubmatch(body, -1)
	switch {
	case len(fences) == 0:
		missing = append(missing, "code segment")
	case len(fences) > 1:
		missing = append(missing, "single code segment")
	}

	if len(missing) > 0 {
		return ParsedBlock{Outcome: BlockMalformed, Missing: missing}
	}

	rule := &rules.Rule{
		RuleID:            fields["RULE_ID"],
		RuleName:          fields["RULE_NAME"],
		Description:       fields["DESCRIPTION"],
		PolicyReference:   fields["POLICY_REF"],
		SourceCode:        strings.TrimSpace(fences[0][1]),
		AppliesToRoles:    parseAppliesTo(fields["APPLIES_TO"]),
		Active:            true,
		GenerationAttempt: 1,
		ValidationHistory: []rules.ValidationAttempt{},
	}

	return ParsedBlock{Outcome: BlockWellFormed, Rule: rule}
}

// parseAppliesTo maps the APPLIES_TO field to a role slice. "ALL"
// (case-insensitive) means the rule applies to every role, represented as an
// empty slice. Otherwise the value is split on commas, trimmed, and empty
// entries dropped.
func parseAppliesTo(value string) []string {
	if strings.EqualFold(strings.TrimSpace(value), "ALL") {
		return []string{}
	}

	parts := strings.Split(value, ",")
	roles := make([]string, 0, len(parts))
	for _, part := range parts {
		role := strings.TrimSpace(part)
		if role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}
