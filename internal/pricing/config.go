package pricing

// Config contains the configuration required to reach the pricing
// catalog, and to decide which region is priced.
type Config struct {
	// The catalog is only served from a handful of regions, which need
	// not match the region being priced.
	ApiRegion       string `yaml:"api_region" env:"PRICING_API_REGION" env-default:"us-east-1" validate:"oneof=us-east-1 ap-south-1 eu-central-1"`
	Profile         string `yaml:"profile" env:"PRICING_AWS_PROFILE"`
	Region          string `yaml:"region" env:"PRICING_REGION" env-default:"ap-southeast-2"`
	RegionTablePath string `yaml:"region_table" env:"PRICING_REGION_TABLE"`
}
