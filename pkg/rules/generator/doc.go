// Package generator turns free-text compliance policy into candidate rules
// by prompting a completion provider and parsing its response against a
// strict block grammar.
//
// Responses are scanned for repeated RULE START/RULE END blocks. Each block
// must carry five labeled fields (RULE_ID, RULE_NAME, DESCRIPTION,
// POLICY_REF, APPLIES_TO) and exactly one fenced code segment. Blocks that
// fail the grammar are skipped with a warning rather than failing the batch,
// so a partially malformed response degrades to fewer candidates.
package generator
