package model

import "fmt"

type SortOrder string

const (
	SortNone           SortOrder = ""
	SortPriceLowToHigh SortOrder = "priceLowToHigh"
	SortPriceHighToLow SortOrder = "priceHighToLow"
	// SortModelAZ and SortModelZA order lexicographically on carModel.
	SortModelAZ SortOrder = "modelAZ"
	SortModelZA SortOrder = "modelZA"
	// SortRecent is not accepted from clients; it backs the recent view.
	SortRecent SortOrder = "recent"
)

func ParseSortOrder(raw string) (SortOrder, error) {
	switch s := SortOrder(raw); s {
	case SortNone, SortPriceLowToHigh, SortPriceHighToLow, SortModelAZ, SortModelZA:
		return s, nil
	}
	return SortNone, fmt.Errorf("unknown sort option %q", raw)
}

// ListingFilter selects listings. Zero values mean "no constraint".
type ListingFilter struct {
	Search     string
	OwnerEmail string
	Sort       SortOrder
	Limit      int64
}
