package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nichefood/backend/internal/domain"
	"github.com/nichefood/backend/internal/infrastructure/openfoodfacts"
	"github.com/nichefood/backend/internal/scoring"
	"github.com/nichefood/backend/internal/usecase"
	"github.com/spf13/cobra"
)

type assessFlags struct {
	file      string
	species   string
	lifeStage string
	allergies []string
	format    string
	force     bool
}

func newAssessCmd() *cobra.Command {
	flags := &assessFlags{}

	cmd := &cobra.Command{
		Use:   "assess [flags]",
		Short: "Assess a product from an OpenFoodFacts JSON document",
		Long: `Assess reads a product document (the OpenFoodFacts API response or a bare
product object) from --file or stdin and prints its quality assessment`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssess(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "product JSON file (default stdin)")
	addOverrideFlags(cmd, &flags.species, &flags.lifeStage, &flags.allergies)
	cmd.Flags().StringVar(&flags.format, "format", "pretty", "output format (pretty|json)")
	cmd.Flags().BoolVar(&flags.force, "force", false, "assess even if the product does not look like pet food")

	return cmd
}

// addOverrideFlags registers the species, life stage and allergy overrides
func addOverrideFlags(cmd *cobra.Command, species, lifeStage *string, allergies *[]string) {
	cmd.Flags().StringVar(species, "species", "", "override detected species (cat|dog)")
	cmd.Flags().StringVar(lifeStage, "life-stage", "", "override detected life stage (puppy|kitten|adult|senior)")
	cmd.Flags().StringSliceVar(allergies, "allergy", nil, "allergen to flag, repeatable (e.g. chicken,dairy)")
}

// buildOptions validates overrides strictly: a typo on the command line is an
// error rather than a silent fallback to detection.
func buildOptions(species, lifeStage string, allergies []string) (domain.AssessOptions, error) {
	opts := domain.AssessOptions{}

	if species != "" {
		opts.Species = domain.ParseSpecies(species)
		if opts.Species == "" {
			return opts, fmt.Errorf("unsupported species %q (must be cat or dog)", species)
		}
	}
	if lifeStage != "" {
		opts.LifeStage = domain.ParseLifeStage(lifeStage)
		if opts.LifeStage == "" {
			return opts, fmt.Errorf("unsupported life stage %q (must be puppy, kitten, adult or senior)", lifeStage)
		}
	}
	for _, allergy := range allergies {
		if allergy = strings.ToLower(strings.TrimSpace(allergy)); allergy != "" {
			opts.Allergies = append(opts.Allergies, allergy)
		}
	}

	return opts, nil
}

func runAssess(cmd *cobra.Command, flags *assessFlags) error {
	if err := validateFormat(flags.format); err != nil {
		return err
	}
	opts, err := buildOptions(flags.species, flags.lifeStage, flags.allergies)
	if err != nil {
		return err
	}

	var input io.Reader = cmd.InOrStdin()
	if flags.file != "" {
		f, err := os.Open(flags.file)
		if err != nil {
			return fmt.Errorf("failed to open product file: %w", err)
		}
		defer f.Close()
		input = f
	}

	product, err := openfoodfacts.DecodeProduct(input)
	if err != nil {
		return err
	}

	service := usecase.NewAssessmentService(nil, nil, usecase.AssessmentServiceConfig{})
	result, err := service.AssessProduct(cmd.Context(), product, opts)
	if errors.Is(err, domain.ErrNotPetFood) && flags.force {
		assessment := scoring.Assess(product, opts)
		result.Assessment = &assessment
		err = nil
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotPetFood) {
			return fmt.Errorf("%w (use --force to assess anyway)", err)
		}
		return err
	}

	if flags.format == "json" {
		return renderJSON(cmd.OutOrStdout(), result)
	}
	renderPretty(cmd.OutOrStdout(), result)
	return nil
}
