// Command coefreport fits ridge coefficients for every product of an industry
// and writes them to an Excel workbook, one row per product.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"pricelens/internal/catalog"
	"pricelens/internal/config"
	"pricelens/internal/infrastructure"
	"pricelens/internal/regression"
	"pricelens/internal/services"
)

const sheetName = "Coefficients"

func main() {
	industry := flag.String("industry", "", "industry to report on (required)")
	dataDir := flag.String("data", "", "data root (defaults to the configured data dir)")
	out := flag.String("out", "", "output workbook path (defaults to <industry>_coefficients.xlsx)")
	alpha := flag.Float64("alpha", 0, "ridge regularisation strength (defaults to the configured alpha)")
	flag.Parse()

	if *industry == "" {
		fmt.Fprintln(os.Stderr, "coefreport: -industry is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", slog.String("error", err.Error()))
		cfg = config.Default()
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *alpha > 0 {
		cfg.Model.Alpha = *alpha
	}
	if *out == "" {
		*out = *industry + "_coefficients.xlsx"
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	svc, err := newFactorService(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rows, err := writeReport(context.Background(), svc, *industry, *out)
	if err != nil {
		logger.Error("Failed to write report", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Coefficient report written",
		slog.String("industry", *industry),
		slog.String("path", *out),
		slog.Int("products", rows))
}

func newFactorService(cfg *config.Config, logger *slog.Logger) (*services.FactorService, error) {
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, err
	}
	industries, err := config.LoadIndustries(paths.IndustriesFile)
	if err != nil {
		return nil, err
	}

	return services.NewFactorService(catalog.New(paths.DataDir), industries, services.NewCoefficientCache(),
		services.WithFitter(regression.NewRidge(cfg.Model.Alpha)),
		services.WithLogger(logger),
	), nil
}

// writeReport fits every product of industry and saves the workbook at path.
// Products that fail to fit keep their row with the error in the last column.
// It returns the number of product rows written.
func writeReport(ctx context.Context, svc *services.FactorService, industry, path string) (int, error) {
	products, err := svc.ListProducts(ctx, industry)
	if err != nil {
		return 0, err
	}

	factors := svc.Industry(industry).InfluencingFactors

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return 0, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return 0, fmt.Errorf("delete default sheet: %w", err)
	}

	header := make([]interface{}, 0, len(factors)+3)
	header = append(header, "Product")
	for _, factor := range factors {
		header = append(header, factor)
	}
	header = append(header, "const", "error")
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return 0, fmt.Errorf("style header: %w", err)
	}

	for i, product := range products {
		row := make([]interface{}, len(header))
		row[0] = product

		coefs, err := svc.Coefficients(ctx, industry, product)
		if err != nil {
			row[len(row)-1] = err.Error()
		} else {
			for j, factor := range factors {
				if w, ok := coefs.Weight(factor); ok {
					row[j+1] = w
				}
			}
			row[len(row)-2] = coefs.Intercept
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return 0, fmt.Errorf("write row for %s: %w", product, err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("save workbook: %w", err)
	}

	return len(products), nil
}
