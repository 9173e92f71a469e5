// README: Pickup/endpoint locations deduplicated by postal address.
package location

import (
	"fmt"
	"strings"
	"time"

	"codrive/internal/types"
)

type Address struct {
	Country     string `json:"country"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
}

type Location struct {
	ID        types.ID    `json:"id"`
	Address   Address     `json:"address"`
	Point     types.Point `json:"point"`
	CreatedAt time.Time   `json:"created_at"`
}

// Normalize trims whitespace so the same physical address maps to one record.
func (a Address) Normalize() Address {
	return Address{
		Country:     strings.TrimSpace(a.Country),
		PostalCode:  strings.TrimSpace(a.PostalCode),
		City:        strings.TrimSpace(a.City),
		Street:      strings.TrimSpace(a.Street),
		HouseNumber: strings.TrimSpace(a.HouseNumber),
	}
}

func (a Address) Valid() bool {
	n := a.Normalize()
	return n.Country != "" && n.City != "" && n.Street != ""
}

// Query is the free-text form handed to the geocoder.
func (a Address) Query() string {
	n := a.Normalize()
	street := strings.TrimSpace(n.Street + " " + n.HouseNumber)
	city := strings.TrimSpace(n.PostalCode + " " + n.City)
	return fmt.Sprintf("%s, %s, %s", street, city, n.Country)
}
