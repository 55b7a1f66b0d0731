package engine

import "github.com/aretw0/exprmig/pkg/domain"

// matchAllPattern is the regex scope value meaning "no restriction".
const matchAllPattern = ".*"

// Scope narrows the documents selected for scanning. Every field is optional.
// Regex fields left empty or set to ".*" add no clause.
type Scope struct {
	ServiceRegex    string `mapstructure:"regexservice" yaml:"regexservice"`
	SubserviceRegex string `mapstructure:"regexservicepath" yaml:"regexservicepath"`
	DeviceIDRegex   string `mapstructure:"regexdeviceid" yaml:"regexdeviceid"`
	EntityTypeRegex string `mapstructure:"regexentitytype" yaml:"regexentitytype"`

	Service    string `mapstructure:"service" yaml:"service"`
	Subservice string `mapstructure:"servicepath" yaml:"servicepath"`
	DeviceID   string `mapstructure:"deviceid" yaml:"deviceid"`
	EntityType string `mapstructure:"entitytype" yaml:"entitytype"`
}

// BuildFilter builds the selection filter: documents where any site matches the legacy
// pattern (or that carry an expressionLanguage tag the policy must rewrite), restricted
// by the scope.
func BuildFilter(policy domain.LanguagePolicy, scope Scope) domain.Filter {
	var legacy domain.Or
	for _, field := range siteFields() {
		legacy = append(legacy, domain.Regex{Field: field, Pattern: LegacyPattern})
	}
	if policy.ScansTaggedDocuments() {
		legacy = append(legacy, domain.Exists{Field: domain.FieldExpressionLanguage})
	}

	filter := domain.And{legacy}

	regexClauses := []struct{ field, pattern string }{
		{domain.FieldDeviceID, scope.DeviceIDRegex},
		{domain.FieldEntityType, scope.EntityTypeRegex},
		{domain.FieldService, scope.ServiceRegex},
		{domain.FieldSubservice, scope.SubserviceRegex},
	}
	for _, c := range regexClauses {
		if c.pattern == "" || c.pattern == matchAllPattern {
			continue
		}
		filter = append(filter, domain.Regex{Field: c.field, Pattern: c.pattern})
	}

	exactClauses := []struct{ field, value string }{
		{domain.FieldDeviceID, scope.DeviceID},
		{domain.FieldEntityType, scope.EntityType},
		{domain.FieldService, scope.Service},
		{domain.FieldSubservice, scope.Subservice},
	}
	for _, c := range exactClauses {
		if c.value == "" {
			continue
		}
		filter = append(filter, domain.Equal{Field: c.field, Value: c.value})
	}

	return filter
}
