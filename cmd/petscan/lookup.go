package main

import (
	"fmt"

	"github.com/nichefood/backend/config"
	"github.com/nichefood/backend/internal/infrastructure/cache"
	"github.com/nichefood/backend/internal/infrastructure/openfoodfacts"
	"github.com/nichefood/backend/internal/usecase"
	"github.com/spf13/cobra"
)

type lookupFlags struct {
	species   string
	lifeStage string
	allergies []string
	format    string
	baseURL   string
}

func newLookupCmd() *cobra.Command {
	flags := &lookupFlags{}

	cmd := &cobra.Command{
		Use:   "lookup barcode [barcode...]",
		Short: "Fetch products from OpenFoodFacts and assess them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, flags, args)
		},
	}

	addOverrideFlags(cmd, &flags.species, &flags.lifeStage, &flags.allergies)
	cmd.Flags().StringVar(&flags.format, "format", "pretty", "output format (pretty|json)")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "OpenFoodFacts base URL (overrides config)")

	return cmd
}

func runLookup(cmd *cobra.Command, flags *lookupFlags, barcodes []string) error {
	if err := validateFormat(flags.format); err != nil {
		return err
	}
	opts, err := buildOptions(flags.species, flags.lifeStage, flags.allergies)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	baseURL := cfg.OpenFoodFacts.BaseURL
	if flags.baseURL != "" {
		baseURL = flags.baseURL
	}

	client := openfoodfacts.NewClient(baseURL, cfg.OpenFoodFacts.UserAgent)
	client.SetTimeout(cfg.OpenFoodFacts.Timeout)
	client.SetRateLimit(cfg.RateLimit.OpenFoodFacts)

	// repeated barcodes in one invocation hit the cache
	memoryCache := cache.NewMemoryCache(0)
	defer memoryCache.Close()

	service := usecase.NewAssessmentService(memoryCache, client, usecase.AssessmentServiceConfig{
		CacheTTL:         cfg.Cache.TTL,
		BatchConcurrency: cfg.Assessment.BatchConcurrency,
		MaxBatchSize:     max(len(barcodes), cfg.Assessment.MaxBatchSize),
	})

	items, err := service.AssessBarcodes(cmd.Context(), barcodes, opts)
	if err != nil {
		return err
	}

	failed := 0
	for _, item := range items {
		if item.Error != "" {
			failed++
		}
	}

	out := cmd.OutOrStdout()
	if flags.format == "json" {
		if err := renderJSON(out, items); err != nil {
			return err
		}
	} else {
		for i, item := range items {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if item.Result != nil {
				renderPretty(out, item.Result)
			}
			if item.Error != "" {
				if item.Result == nil {
					renderItemError(out, item.Barcode, item.Error)
				} else {
					alertColor.Fprintf(out, "  %s\n", item.Error)
				}
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d barcodes could not be assessed", failed, len(items))
	}
	return nil
}
