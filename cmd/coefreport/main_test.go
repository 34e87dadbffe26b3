package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pricelens/internal/config"
	"pricelens/internal/shared/testutil"
)

func retailCSV(rows int) string {
	var b strings.Builder
	b.WriteString("Sales Price,MRP,Comp Price,Inventory levels,Seasonal,Offers & Discount,Demand Score,Customer segment,Campaign,Sales revenue,Inflation\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
			50+2*i, 60+i, 55+i%4, 200-3*i, i%2, i%5, 3+i%3, i%2, i%3, 1000+17*i, 2+i%2)
	}
	return b.String()
}

func TestWriteReport(t *testing.T) {
	root := t.TempDir()
	testutil.WriteProduct(t, root, "Retail", "shoes", retailCSV(10))
	testutil.WriteProduct(t, root, "Retail", "broken", "Sales Price,MRP\n1,2\n")

	cfg := config.Default()
	cfg.Paths.DataDir = root
	svc, err := newFactorService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "reports", "retail.xlsx")
	n, err := writeReport(context.Background(), svc, "Retail", out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	require.Len(t, header, 13)
	assert.Equal(t, "Product", header[0])
	assert.Equal(t, "MRP", header[1])
	assert.Equal(t, "Inflation", header[10])
	assert.Equal(t, []string{"const", "error"}, header[11:])

	broken := rows[1]
	assert.Equal(t, "broken", broken[0])
	require.Len(t, broken, 13)
	assert.Contains(t, broken[12], "Comp Price")

	shoes := rows[2]
	assert.Equal(t, "shoes", shoes[0])
	require.Len(t, shoes, 12)
	for _, cell := range shoes[1:] {
		_, err := strconv.ParseFloat(cell, 64)
		assert.NoError(t, err, "cell %q", cell)
	}
}

func TestWriteReport_MissingIndustry(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	svc, err := newFactorService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	_, err = writeReport(context.Background(), svc, "Retail", filepath.Join(t.TempDir(), "x.xlsx"))
	require.Error(t, err)
	assert.Equal(t, "Industry directory Retail not found", err.Error())
}
