// Package usda adapts the USDA FoodData Central search API to a food
// provider.
package usda

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
	Name = "usda"
	// Rating is the trust score of a curated national database
	Rating = 5

	DefaultBaseURL = "https://api.nal.usda.gov"
	searchPath     = "/fdc/v1/foods/search"

	// dataTypes limits results to generic, lab-analysed foods
	dataTypes = "Foundation,SR Legacy,Survey (FNDDS)"
)

// FoodData Central nutrient numbers
const (
	nutrientEnergy  = "208"
	nutrientProtein = "203"
	nutrientCarbs   = "205"
	nutrientFat     = "204"
	nutrientFiber   = "291"
	nutrientSugar   = "269"
	nutrientSodium  = "307"
)

// Provider calls the FoodData Central search endpoint
type Provider struct {
	client *resty.Client
	apiKey string
}

// New creates a provider. The public DEMO_KEY is heavily rate limited.
func New(baseURL, apiKey string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if apiKey == "" {
		apiKey = "DEMO_KEY"
	}

	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}

	return &Provider{client: c, apiKey: apiKey}
}

// Name implements outbound.FoodProvider
func (p *Provider) Name() string { return Name }

// Rating implements outbound.FoodProvider
func (p *Provider) Rating() int { return Rating }

type searchResponse struct {
	TotalHits int       `json:"totalHits"`
	Foods     []fdcFood `json:"foods"`
}

type fdcFood struct {
	FdcID         int           `json:"fdcId"`
	Description   string        `json:"description"`
	BrandOwner    string        `json:"brandOwner"`
	FoodCategory  string        `json:"foodCategory"`
	Ingredients   string        `json:"ingredients"`
	FoodNutrients []fdcNutrient `json:"foodNutrients"`
}

type fdcNutrient struct {
	NutrientNumber string   `json:"nutrientNumber"`
	NutrientName   string   `json:"nutrientName"`
	UnitName       string   `json:"unitName"`
	Value          *float64 `json:"value"`
}

// Search implements outbound.FoodProvider
func (p *Provider) Search(ctx context.Context, term string, limit int) ([]food.Draft, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key":  p.apiKey,
			"query":    term,
			"pageSize": strconv.Itoa(limit),
			"dataType": dataTypes,
		}).
		Get(searchPath)
	if err != nil {
		return nil, fmt.Errorf("usda request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("usda status %d", resp.StatusCode())
	}

	var sr searchResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, fmt.Errorf("decode usda response: %w", err)
	}

	drafts := make([]food.Draft, 0, len(sr.Foods))
	for _, f := range sr.Foods {
		drafts = append(drafts, f.draft())
	}
	return drafts, nil
}

func (f fdcFood) draft() food.Draft {
	values := make(map[string]float64, len(f.FoodNutrients))
	for _, n := range f.FoodNutrients {
		if n.Value == nil {
			continue
		}
		// Energy is also reported in kJ under a different number
		if n.NutrientNumber == nutrientEnergy && !strings.EqualFold(n.UnitName, "KCAL") {
			continue
		}
		values[n.NutrientNumber] = *n.Value
	}
	get := func(number string) *float64 {
		v, ok := values[number]
		if !ok {
			return nil
		}
		return food.Float(v)
	}

	d := food.Draft{
		ID:       strconv.Itoa(f.FdcID),
		Source:   food.SourceUSDA,
		Name:     f.Description,
		Calories: get(nutrientEnergy),
		Protein:  get(nutrientProtein),
		Carbs:    get(nutrientCarbs),
		Fat:      get(nutrientFat),
		Fiber:    get(nutrientFiber),
		Sugar:    get(nutrientSugar),
		Brand:    f.BrandOwner,
		Category: f.FoodCategory,
	}
	if mg, ok := values[nutrientSodium]; ok {
		d.Sodium = food.Float(mg / 1000)
	}
	if strings.TrimSpace(f.Ingredients) != "" {
		for _, ing := range strings.Split(f.Ingredients, ",") {
			d.Ingredients = append(d.Ingredients, strings.TrimSpace(ing))
		}
	}
	return d
}
