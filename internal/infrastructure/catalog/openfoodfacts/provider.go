// Package openfoodfacts adapts the Open Food Facts search API to a food
// provider.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nutriplan/v1/internal/domain/food"
)

const (
	// Name identifies the provider in logs and metrics
	Name = "openfoodfacts"
	// Rating is the trust score of a crowd-sourced database
	Rating = 4

	DefaultBaseURL = "https://world.openfoodfacts.org"
	searchPath     = "/cgi/search.pl"

	fields = "code,product_name,generic_name,brands,categories,allergens_tags,ingredients_text,image_front_small_url,nutriments"
)

// Provider calls the Open Food Facts search endpoint
type Provider struct {
	client *resty.Client
}

// New creates a provider. An empty baseURL uses the public instance.
func New(baseURL, userAgent string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = "nutriplan/1.0"
	}

	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}

	return &Provider{client: c}
}

// Name implements outbound.FoodProvider
func (p *Provider) Name() string { return Name }

// Rating implements outbound.FoodProvider
func (p *Provider) Rating() int { return Rating }

type searchResponse struct {
	Count    int       `json:"count"`
	Products []product `json:"products"`
}

type product struct {
	Code          string                 `json:"code"`
	ProductName   string                 `json:"product_name"`
	GenericName   string                 `json:"generic_name"`
	Brands        string                 `json:"brands"`
	Categories    string                 `json:"categories"`
	AllergensTags []string               `json:"allergens_tags"`
	Ingredients   string                 `json:"ingredients_text"`
	Image         string                 `json:"image_front_small_url"`
	Nutriments    map[string]interface{} `json:"nutriments"`
}

// Search implements outbound.FoodProvider
func (p *Provider) Search(ctx context.Context, term string, limit int) ([]food.Draft, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search_terms":  term,
			"search_simple": "1",
			"action":        "process",
			"json":          "1",
			"page_size":     strconv.Itoa(limit),
			"fields":        fields,
		}).
		Get(searchPath)
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("openfoodfacts status %d", resp.StatusCode())
	}

	var sr searchResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, fmt.Errorf("decode openfoodfacts response: %w", err)
	}

	drafts := make([]food.Draft, 0, len(sr.Products))
	for _, prod := range sr.Products {
		drafts = append(drafts, prod.draft())
	}
	return drafts, nil
}

func (p product) draft() food.Draft {
	name := p.ProductName
	if strings.TrimSpace(name) == "" {
		name = p.GenericName
	}

	return food.Draft{
		ID:          p.Code,
		Source:      food.SourceOpenFoodFacts,
		Name:        name,
		Calories:    p.nutriment("energy-kcal_100g"),
		Protein:     p.nutriment("proteins_100g"),
		Carbs:       p.nutriment("carbohydrates_100g"),
		Fat:         p.nutriment("fat_100g"),
		Fiber:       p.nutriment("fiber_100g"),
		Sugar:       p.nutriment("sugars_100g"),
		Sodium:      p.nutriment("sodium_100g"),
		Brand:       firstOf(p.Brands),
		Category:    firstOf(p.Categories),
		Allergens:   p.AllergensTags,
		Ingredients: splitList(p.Ingredients),
		Image:       p.Image,
	}
}

// nutriment reads a per-100g value that the API reports either as a
// number or as a numeric string.
func (p product) nutriment(key string) *float64 {
	switch v := p.Nutriments[key].(type) {
	case float64:
		return food.Float(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(v, ",", ".")), 64)
		if err != nil {
			return nil
		}
		return food.Float(f)
	default:
		return nil
	}
}

func firstOf(list string) string {
	parts := splitList(list)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
