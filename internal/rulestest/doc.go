// Package rulestest provides scripted test doubles for the rule
// pipeline's external collaborators: the completion provider and the
// sandbox harness. Both are safe for concurrent use and record the
// calls they receive.
package rulestest
