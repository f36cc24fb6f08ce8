package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/nichefood/backend/internal/domain"
)

const maxNameWidth = 60

var (
	headingColor  = color.New(color.Bold)
	positiveColor = color.New(color.FgGreen)
	warningColor  = color.New(color.FgYellow)
	alertColor    = color.New(color.FgRed, color.Bold)
	mutedColor    = color.New(color.Faint)
)

func ratingColor(rating domain.Rating) *color.Color {
	switch rating {
	case domain.RatingExcellent:
		return color.New(color.FgGreen, color.Bold)
	case domain.RatingGood:
		return color.New(color.FgCyan, color.Bold)
	case domain.RatingAverage:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func displayName(product domain.ProductRecord) string {
	name := product.ProductName
	if name == "" {
		name = product.GenericName
	}
	if name == "" {
		name = "Unnamed product"
	}
	return runewidth.Truncate(name, maxNameWidth, "…")
}

// renderPretty writes a human readable report of one assessed product
func renderPretty(w io.Writer, result *domain.ProductAssessment) {
	headingColor.Fprintln(w, displayName(result.Product))

	meta := []string{}
	if result.Barcode != "" {
		meta = append(meta, "barcode "+result.Barcode)
	}
	if result.Product.Brands != "" {
		meta = append(meta, "brand "+result.Product.Brands)
	}
	if result.Source != "" {
		meta = append(meta, "source "+result.Source)
	}
	if len(meta) > 0 {
		mutedColor.Fprintf(w, "  %s\n", strings.Join(meta, " | "))
	}

	if !result.IsPetFood {
		warningColor.Fprintln(w, "  not recognized as pet food")
	}

	a := result.Assessment
	if a == nil {
		return
	}

	fmt.Fprintf(w, "  score %d/100 ", a.Score)
	ratingColor(a.Rating).Fprintln(w, a.Rating)

	species := string(a.Species)
	if species == "" {
		species = "unknown"
	}
	profile := fmt.Sprintf("  species %s | life stage %s | %d ingredients", species, a.LifeStage, a.IngredientCount)
	if a.NutriScore != "" {
		profile += " | Nutri-Score " + strings.ToUpper(a.NutriScore)
	}
	mutedColor.Fprintln(w, profile)

	for _, msg := range a.Positives {
		positiveColor.Fprintf(w, "  %s\n", msg)
	}
	for _, msg := range a.Warnings {
		warningColor.Fprintf(w, "  %s\n", msg)
	}
	for _, msg := range a.AllergyWarnings {
		alertColor.Fprintf(w, "  %s\n", msg)
	}

	if len(a.DetectedAllergens) > 0 {
		mutedColor.Fprintf(w, "  allergens: %s\n", strings.Join(a.DetectedAllergens, ", "))
	}
}

// renderItemError writes a failed batch item
func renderItemError(w io.Writer, barcode, message string) {
	headingColor.Fprintln(w, barcode)
	alertColor.Fprintf(w, "  %s\n", message)
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func validateFormat(format string) error {
	switch format {
	case "pretty", "json":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}
