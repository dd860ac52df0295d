package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awspricing "github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/aws/smithy-go"
)

const formatVersion = "aws_v1"

type (
	sdkClient interface {
		awspricing.GetProductsAPIClient
		awspricing.DescribeServicesAPIClient
		awspricing.GetAttributeValuesAPIClient
	}

	// AWSCatalog is a CatalogAPI backed by the AWS Price List API.
	AWSCatalog struct {
		client sdkClient
	}
)

// NewAWSCatalog constructs a catalog using the default AWS credential chain
// (environment, shared config, instance role).
func NewAWSCatalog(ctx context.Context, config Config) (*AWSCatalog, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(config.ApiRegion)}
	if config.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(config.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSCatalog{client: awspricing.NewFromConfig(cfg)}, nil
}

func newAWSCatalogWithClient(client sdkClient) *AWSCatalog {
	return &AWSCatalog{client: client}
}

func (catalog *AWSCatalog) GetProducts(ctx context.Context, serviceCode string, filters []Filter) ([]string, error) {
	input := &awspricing.GetProductsInput{
		ServiceCode:   aws.String(serviceCode),
		FormatVersion: aws.String(formatVersion),
		Filters:       make([]types.Filter, 0, len(filters)),
	}
	for _, f := range filters {
		input.Filters = append(input.Filters, types.Filter{
			Field: aws.String(f.Field),
			Type:  types.FilterType(f.Type),
			Value: aws.String(f.Value),
		})
	}

	var output []string
	paginator := awspricing.NewGetProductsPaginator(catalog.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyAWSError("GetProducts", err)
		}

		output = append(output, page.PriceList...)
	}

	return output, nil
}

func (catalog *AWSCatalog) DescribeServices(ctx context.Context, serviceCode string) ([]ServiceDescription, error) {
	input := &awspricing.DescribeServicesInput{
		ServiceCode:   aws.String(serviceCode),
		FormatVersion: aws.String(formatVersion),
	}

	var output []ServiceDescription
	paginator := awspricing.NewDescribeServicesPaginator(catalog.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyAWSError("DescribeServices", err)
		}

		for _, s := range page.Services {
			output = append(output, ServiceDescription{
				ServiceCode:    aws.ToString(s.ServiceCode),
				AttributeNames: s.AttributeNames,
			})
		}
	}

	return output, nil
}

func (catalog *AWSCatalog) GetAttributeValues(ctx context.Context, serviceCode string, attribute string) ([]string, error) {
	input := &awspricing.GetAttributeValuesInput{
		ServiceCode:   aws.String(serviceCode),
		AttributeName: aws.String(attribute),
	}

	var output []string
	paginator := awspricing.NewGetAttributeValuesPaginator(catalog.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyAWSError("GetAttributeValues", err)
		}

		for _, v := range page.AttributeValues {
			output = append(output, aws.ToString(v.Value))
		}
	}

	return output, nil
}

func classifyAWSError(operation string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s rejected (%s): %s", ErrCatalogUnavailable, operation, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}

	return fmt.Errorf("%w: %s failed: %w", ErrCatalogUnavailable, operation, err)
}
