// Package storeutil holds small helpers shared by the Mongo stores.
package storeutil

import "go.mongodb.org/mongo-driver/mongo/options"

// DefaultLimit is the page size used when the caller does not supply one.
const DefaultLimit = 20

// Paginate returns *options.FindOptions with skip/limit given a 1-based page.
func Paginate(limit, page int64) *options.FindOptions {
	limit, page = Clamp(limit, page)
	sk := (page - 1) * limit
	return options.Find().SetLimit(limit).SetSkip(sk)
}

// Clamp normalizes a limit/page pair to sane positive values.
func Clamp(limit, page int64) (int64, int64) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if page <= 0 {
		page = 1
	}
	return limit, page
}
