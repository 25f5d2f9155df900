package model

// Collection names for the document store. Each resource family lives in its
// own named collection, mirroring the site's content types.
const (
	CollectionUsers         = "users"
	CollectionProducts      = "products"
	CollectionOrders        = "orders"
	CollectionReviews       = "reviews"
	CollectionBlogs         = "blogs"
	CollectionPortfolios    = "portfolios"
	CollectionBanners       = "banners"
	CollectionAdminProfiles = "adminprofiles"
	CollectionPayments      = "payments"
)

// Resource describes one CRUD family served over a document collection:
// its URL segment, the collection it stores into, and the field whitelist
// its update route is allowed to overwrite. Fields outside the whitelist
// (ids, payment state, timestamps) survive an update untouched.
type Resource struct {
	Name         string   // singular URL segment, e.g. "product"
	Plural       string   // list URL segment, e.g. "products"
	Collection   string   // document store collection
	HasGet       bool     // whether a get-by-id route is mounted
	UpdateFields []string // fields the PUT route may overwrite; nil = no update route
}

// Resources is the catalogue of document-backed CRUD families the server
// exposes. The update whitelists are the contract of each PUT route: a
// product update may touch pricing and stock, but can never flip an order's
// paid flag, and so on.
var Resources = []Resource{
	{
		Name:       "product",
		Plural:     "products",
		Collection: CollectionProducts,
		HasGet:     true,
		UpdateFields: []string{
			"title", "description", "quantity", "minorder", "price", "review", "img",
		},
	},
	{
		Name:       "order",
		Plural:     "orders",
		Collection: CollectionOrders,
		HasGet:     true,
		// Orders are only ever patched through the payment flow, which has
		// its own fixed field set. The generic update route is not mounted.
		UpdateFields: nil,
	},
	{
		Name:         "review",
		Plural:       "reviews",
		Collection:   CollectionReviews,
		UpdateFields: nil,
	},
	{
		Name:         "blog",
		Plural:       "blogs",
		Collection:   CollectionBlogs,
		HasGet:       true,
		UpdateFields: []string{"title", "description", "img"},
	},
	{
		Name:         "portfolio",
		Plural:       "portfolios",
		Collection:   CollectionPortfolios,
		HasGet:       true,
		UpdateFields: []string{"title", "description", "img", "link"},
	},
	{
		Name:       "adminprofile",
		Plural:     "adminprofiles",
		Collection: CollectionAdminProfiles,
		UpdateFields: []string{
			"name", "description", "facebook", "fiverr", "upwork", "github", "linkedin", "img",
		},
	},
	{
		Name:         "banner",
		Plural:       "banners",
		Collection:   CollectionBanners,
		UpdateFields: []string{"title", "description", "img"},
	},
}
