package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const productExt = ".csv"

// Product describes one product file
type Product struct {
	Name string
	Path string
}

// Catalog reads the industry/product tree under a root directory. It keeps
// no state between calls so changes on disk are visible immediately.
type Catalog struct {
	root string
}

// New creates a catalog rooted at root
func New(root string) *Catalog {
	return &Catalog{root: root}
}

// Root returns the data root
func (c *Catalog) Root() string {
	return c.root
}

// ListIndustries returns the names of the subdirectories of the root, sorted
func (c *Catalog) ListIndustries(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %s: %w", c.root, err)
	}

	industries := make([]string, 0, len(entries))
	for _, entry := range entries {
		if isDir(c.root, entry) {
			industries = append(industries, entry.Name())
		}
	}
	sort.Strings(industries)

	return industries, nil
}

// ListProducts returns the product names of an industry, sorted
func (c *Catalog) ListProducts(ctx context.Context, industry string) ([]string, error) {
	products, err := c.Products(ctx, industry)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	return names, nil
}

// Products returns the product files of an industry sorted by name. A name is
// the file name up to its first dot.
func (c *Catalog) Products(ctx context.Context, industry string) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := c.industryDir(industry)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, IndustryNotFound(industry, err)
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var products []Product
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, productExt) || isDir(dir, entry) {
			continue
		}

		products = append(products, Product{
			Name: stem(name),
			Path: filepath.Join(dir, name),
		})
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Name < products[j].Name
	})

	return products, nil
}

// ProductPath returns the CSV path for a product. Names that could escape
// the industry directory are reported as not found.
func (c *Catalog) ProductPath(industry, product string) (string, error) {
	dir, err := c.industryDir(industry)
	if err != nil {
		return "", ProductNotFound(industry, product, err)
	}
	if !validName(product) {
		return "", ProductNotFound(industry, product, nil)
	}
	return filepath.Join(dir, product+productExt), nil
}

// Readable reports an error when the root cannot be listed
func (c *Catalog) Readable() error {
	info, err := os.Stat(c.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", c.root)
	}
	_, err = os.ReadDir(c.root)
	return err
}

func (c *Catalog) industryDir(industry string) (string, error) {
	if !validName(industry) {
		return "", IndustryNotFound(industry, nil)
	}

	dir := filepath.Join(c.root, industry)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", IndustryNotFound(industry, err)
	}
	return dir, nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

func stem(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// isDir follows symlinks so linked industry folders are listed too
func isDir(parent string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, entry.Name()))
	return err == nil && info.IsDir()
}
