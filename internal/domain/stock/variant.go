package stock

import (
	"bytes"
	"encoding/json"
)

// Variant identifies the variant dimension of a stock record.
// The zero value is the base product, meaning the product is stocked
// without a variant dimension. A named variant always has a non-empty name;
// that is enforced at record creation.
type Variant struct {
	name  string
	named bool
}

// BaseVariant returns the variant for a product with no variant dimension.
func BaseVariant() Variant {
	return Variant{}
}

// NamedVariant returns the variant for the given variant name.
func NamedVariant(name string) Variant {
	return Variant{name: name, named: true}
}

// IsBase reports whether this is the base product (no variant dimension).
func (v Variant) IsBase() bool {
	return !v.named
}

// Name returns the variant name, or the empty string for the base variant.
func (v Variant) Name() string {
	return v.name
}

// String returns a human-readable label for logs and error details.
func (v Variant) String() string {
	if v.named {
		return v.name
	}
	return "base"
}

// MarshalJSON encodes a named variant as its name and the base variant as null.
func (v Variant) MarshalJSON() ([]byte, error) {
	if !v.named {
		return []byte("null"), nil
	}
	return json.Marshal(v.name)
}

// UnmarshalJSON accepts null (base variant) or a string (named variant).
func (v *Variant) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = BaseVariant()
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*v = NamedVariant(name)
	return nil
}

// VariantFromName converts a nullable name (as stored or transported) to a Variant.
func VariantFromName(name *string) Variant {
	if name == nil {
		return BaseVariant()
	}
	return NamedVariant(*name)
}

// NullableName converts a Variant to a nullable name for storage and transport.
func (v Variant) NullableName() *string {
	if !v.named {
		return nil
	}
	name := v.name
	return &name
}
