package repos

import "shopsim/internal/store"

// Collection names.
const (
	ColUsers          = "users"
	ColCategories     = "categories"
	ColProducts       = "products"
	ColOrders         = "orders"
	ColCarts          = "carts"
	ColAddresses      = "addresses"
	ColPaymentMethods = "payment_methods"
	ColFiles          = "files"
)

const SchemaVersion = 1

// Schema declares every collection and secondary index the repos rely on.
// The store creates whatever is missing on open.
func Schema() store.Schema {
	return store.Schema{
		Version: SchemaVersion,
		Collections: []store.Collection{
			{Name: ColUsers, Indexes: []store.Index{{Name: "email", Field: "email"}}},
			{Name: ColCategories},
			{Name: ColProducts, Indexes: []store.Index{{Name: "category", Field: "categoryId"}}},
			{Name: ColOrders, Indexes: []store.Index{
				{Name: "user", Field: "userId"},
				{Name: "status", Field: "status"},
			}},
			{Name: ColCarts},
			{Name: ColAddresses, Indexes: []store.Index{{Name: "user", Field: "userId"}}},
			{Name: ColPaymentMethods, Indexes: []store.Index{{Name: "user", Field: "userId"}}},
			{Name: ColFiles, Indexes: []store.Index{{Name: "uploader", Field: "uploadedBy"}}},
		},
	}
}

// Open opens (or creates) the backing store at dsn with the full schema.
func Open(dsn string) (*store.Store, error) {
	return store.OpenOrCreate(dsn, Schema())
}
