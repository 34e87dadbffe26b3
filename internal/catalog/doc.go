// Package catalog discovers industries and products under the data root.
//
// The layout is one directory per industry holding one CSV file per product:
//
//	<root>/<industry>/<product>.csv
//
// Example usage:
//
//	cat := catalog.New("data")
//	industries, err := cat.ListIndustries(ctx)
//	products, err := cat.ListProducts(ctx, "Pharma")
package catalog
