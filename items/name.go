package items

import "github.com/goliatone/go-slug"

// NameNormalizer exposes the slug normalizer used for item names.
type NameNormalizer = slug.Normalizer

// DefaultNameNormalizer returns the default item name normalizer.
func DefaultNameNormalizer() NameNormalizer {
	return slug.Default()
}

// NormalizeName applies the default normalization rules to an item name.
func NormalizeName(value string) (string, error) {
	return slug.Normalize(value)
}

// IsValidName reports whether the name satisfies the default rules.
func IsValidName(value string) bool {
	return slug.IsValid(value)
}
