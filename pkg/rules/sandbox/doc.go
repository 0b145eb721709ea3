// Package sandbox is the client for the isolated rule-execution service.
//
// Generated rule code is untrusted and never runs inside the Themis
// process. The sandbox service runs it behind a narrow request/response
// contract, in two modes: validation (the rule source is exercised against
// fixed and adversarial fixtures and the outcome classified) and live
// evaluation (the rule is invoked against a concrete employee, security,
// and trade date and returns a verdict).
//
// How the service isolates execution (process, container, VM) is its own
// concern; this package only speaks the contract.
package sandbox
