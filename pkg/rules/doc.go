// Package rules defines the core domain types for Themis: generated
// compliance rules, the per-firm rule set, validation history, and the
// compliance verdict produced when a trade request is checked.
//
// The types in this package are shared by the generator, pipeline, store,
// and executor packages. They carry the JSON tags of the persisted rule set
// document, so a RuleSet round-trips unchanged through storage.
package rules
