// Package commands holds the concrete command handlers served by rolegate
// and the Router that selects one by command name.
//
// Handlers are total: every combination of missing optional context (no
// options, no member, no guild) produces a descriptive reply. Failures of the
// outbound role grant are turned into replies too, so the platform always
// receives a normal acknowledgement and never retries its delivery.
package commands
