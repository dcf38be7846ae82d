// Package user provides the user directory: identity records with their
// optional profile and address, and the aggregated listing that returns each
// user's role and permission entitlements as nested arrays.
//
// The listing is compiled dynamically from ListParams: every present filter
// appends exactly one predicate, sort keys are restricted to an allow-list,
// and pagination is cursor-based (id > cursor) so pages stay stable under
// concurrent inserts. See listquery.go for the compilation rules and
// projector.go for how raw rows become the nested entity graph.
package user
