package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/hbomb79/smartmedia/pkg/logger"
)

var log = logger.Get("Pricing")

type (
	// CatalogAPI is the remote pricing catalog. Implementations must return
	// every page of results, and must wrap transport and authentication
	// failures with ErrCatalogUnavailable.
	CatalogAPI interface {
		GetProducts(ctx context.Context, serviceCode string, filters []Filter) ([]string, error)
		DescribeServices(ctx context.Context, serviceCode string) ([]ServiceDescription, error)
		GetAttributeValues(ctx context.Context, serviceCode string, attribute string) ([]string, error)
	}

	ServiceDescription struct {
		ServiceCode    string   `json:"service_code"`
		AttributeNames []string `json:"attribute_names"`
	}

	// Client queries the catalog on behalf of a single service.
	Client struct {
		api     CatalogAPI
		service Service
		regions *RegionTable
	}
)

func NewClient(api CatalogAPI, service Service, regions *RegionTable) *Client {
	return &Client{api: api, service: service, regions: regions}
}

func (client *Client) Service() Service { return client.service }

// GetProducts returns all products for this client's service matching the
// filters provided. The service code filter is always applied first.
func (client *Client) GetProducts(ctx context.Context, filters []Filter) ([]*Product, error) {
	merged := mergeFilters(client.service.Code, filters)
	log.Verbosef("Fetching %s products with filters %v\n", client.service, merged)

	raw, err := client.api.GetProducts(ctx, client.service.Code, merged)
	if err != nil {
		return nil, unavailable(err)
	}

	products := make([]*Product, 0, len(raw))
	for _, entry := range raw {
		product, err := ParseProduct([]byte(entry), client.service.Variant)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	return products, nil
}

func (client *Client) DescribeService(ctx context.Context) (*ServiceDescription, error) {
	descriptions, err := client.api.DescribeServices(ctx, client.service.Code)
	if err != nil {
		return nil, unavailable(err)
	}

	for _, d := range descriptions {
		if d.ServiceCode == client.service.Code {
			return &d, nil
		}
	}

	return nil, fmt.Errorf("%w: service %s was not described by the catalog", ErrCatalogUnavailable, client.service)
}

func (client *Client) GetAttributeValues(ctx context.Context, attribute string) ([]string, error) {
	values, err := client.api.GetAttributeValues(ctx, client.service.Code, attribute)
	if err != nil {
		return nil, unavailable(err)
	}

	return values, nil
}

// GetLocationPricing fetches the prices for every category offered by this
// client's service in the region provided. Categories for which the
// catalog has no matching product are left unpriced.
func (client *Client) GetLocationPricing(ctx context.Context, regionCode string) (*LocationPricing, error) {
	location, err := client.regions.Location(regionCode)
	if err != nil {
		return nil, err
	}

	filters := append([]Filter{TermFilter("location", location)}, client.service.Filters...)
	products, err := client.GetProducts(ctx, filters)
	if err != nil {
		return nil, err
	}

	pricing := NewLocationPricing(regionCode, location, client.service.Variant)
	for _, product := range products {
		categories := client.service.classify(product)
		if len(categories) == 0 {
			log.Debugf("Ignoring %s product %s (family %q) as it does not price any known category\n", client.service, product.ID, product.Family)
			continue
		}

		for _, category := range categories {
			if err := pricing.SetPrice(category, product.Cost); err != nil {
				return nil, fmt.Errorf("failed to price %s from product %s: %w", category, product.ID, err)
			}
		}
	}

	for _, category := range pricing.Categories() {
		if !pricing.HasValidPrice(category) {
			log.Warnf("No %s pricing for category %s in %s\n", client.service, category, regionCode)
		}
	}

	return pricing, nil
}

func unavailable(err error) error {
	if errors.Is(err, ErrCatalogUnavailable) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
}
