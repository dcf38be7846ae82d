// Package catalog provides read access to the role and permission catalogs
// and resolution of caller-supplied references against them.
//
// A catalog entry is immutable reference data: the entitlement layer looks
// entries up and snapshots their name/description into grants, but never
// creates or mutates them. The Resolver is the single gate every assignment
// passes through, which is what guarantees a grant is never persisted against
// a catalog id that no longer exists.
//
// Both catalogs (roles and permissions) share one implementation selected by
// Kind:
//
//	store, _ := catalog.NewPostgresCatalogStore(pool, catalog.KindRole)
//	resolver := catalog.NewResolver(store, catalog.KindRole)
//	entry, err := resolver.Resolve(ctx, catalog.RefByName("admin"))
package catalog
