package model

import (
	"time"
)

// Field names managed or required by the catalog.
const (
	IDField        = "id"
	NameField      = "name"
	PriceField     = "price"
	CreatedAtField = "createdAt"
	UpdatedAtField = "updatedAt"
)

// TimestampLayout is the ISO-8601 UTC layout used for createdAt and updatedAt.
// Fixed-width fractions keep timestamps lexically ordered.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Product is a catalog record. Values are whatever JSON decoding produces:
// string, float64, bool, nil, map[string]any or []any.
type Product map[string]any

// ID returns the product id and whether it is present as a non-empty string.
func (p Product) ID() (string, bool) {
	id, ok := p[IDField].(string)
	return id, ok && id != ""
}

// HasID reports whether the id field is present at all, whatever its type.
func (p Product) HasID() bool {
	_, ok := p[IDField]
	return ok
}

// Clone returns a shallow copy of p.
func (p Product) Clone() Product {
	out := make(Product, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// InitMeta stamps both createdAt and updatedAt with now.
func (p Product) InitMeta(now time.Time) {
	ts := FormatTimestamp(now)
	p[CreatedAtField] = ts
	p[UpdatedAtField] = ts
}

// Touch refreshes updatedAt with now.
func (p Product) Touch(now time.Time) {
	p[UpdatedAtField] = FormatTimestamp(now)
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
