package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// PharmaHeader lists the default Pharma factors as CSV columns
const PharmaHeader = "Sales Price,MRP,Comp Price,Inventory levels,Seasonal,Expiry days,Demand Score,Govt regulations,Cost of Manufacturing"

// PharmaCSV returns a Pharma product file with n integer rows. Row i holds
//
//	90+3i, 100+2i, 95+i%3, 400-7i, i%2, 300+11i, 5+i%4, i%3, 60+i
func PharmaCSV(n int) string {
	var b strings.Builder
	b.WriteString(PharmaHeader + "\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
			90+3*i, 100+2*i, 95+i%3, 400-7*i, i%2, 300+11*i, 5+i%4, i%3, 60+i)
	}
	return b.String()
}

// WriteProduct writes <root>/<industry>/<product>.csv and returns its path
func WriteProduct(t *testing.T, root, industry, product, content string) string {
	t.Helper()

	dir := filepath.Join(root, industry)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create industry dir: %v", err)
	}
	path := filepath.Join(dir, product+".csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write product: %v", err)
	}
	return path
}
