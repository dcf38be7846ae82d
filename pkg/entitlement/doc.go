// Package entitlement manages grant records linking users to catalog entries
// and the reconciliation that creates them.
//
// # Overview
//
// The entitlement package provides:
//   - Bulk assignment of roles/permissions to specific users or the whole
//     user population, converging idempotently on the requested target set
//   - Per-user failure isolation: one user's bad reference never blocks
//     another user's batch
//   - Bulk unassignment by grant id and by catalog id
//   - Joined grant reads with cursor pagination and read-through
//     accessed_at refresh
//   - Repository pattern with PostgreSQL and in-memory backends
//
// # Basic Usage
//
//	store, _ := catalog.NewPostgresCatalogStore(pool, catalog.KindRole)
//	resolver := catalog.NewResolver(store, catalog.KindRole)
//	grants, _ := entitlement.NewPostgresGrantRepository(pool, catalog.KindRole)
//	validator := entitlement.NewValidator(4)
//	svc := entitlement.NewReconcileService(resolver, grants, userRepo, validator)
//
//	created, err := svc.AssignToUsers(ctx, map[int64][]catalog.Ref{
//		42: {catalog.RefByName("admin"), catalog.RefByID(3)},
//	})
//
// Assignment is best-effort per row once catalog validity is established:
// rows skipped because the user already holds the entitlement, or because an
// individual save failed, are omitted from the result without error detail.
package entitlement
