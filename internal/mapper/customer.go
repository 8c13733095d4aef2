package mapper

import (
	"strings"

	"github.com/marketbridge/marketbridge/internal/model"
)

// CustomerMapper maps customer resources into profile upserts.
type CustomerMapper struct{}

// NewCustomerMapper builds a customer mapper.
func NewCustomerMapper() *CustomerMapper {
	return &CustomerMapper{}
}

// Profile maps a customer into a profile upsert. The phone number and
// location come from the customer's preferred address: the default billing
// address when set, otherwise the first address.
func (m *CustomerMapper) Profile(c *model.Customer) *model.OutboundRequest {
	attrs := &model.ProfileAttributes{
		ExternalID:   c.ID,
		Email:        c.Email,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Title:        c.Title,
		Organization: c.CompanyName,
	}

	if addr := preferredAddress(c); addr != nil {
		attrs.PhoneNumber = addressPhone(*addr)
		attrs.Location = addressLocation(*addr)
	}

	return &model.OutboundRequest{
		Kind:    model.KindProfile,
		Profile: attrs,
	}
}

// CompanyNameProfile maps a bare company-name change into a minimal
// profile update keyed by the customer's external id.
func (m *CustomerMapper) CompanyNameProfile(customerID, companyName string) *model.OutboundRequest {
	return &model.OutboundRequest{
		Kind: model.KindProfile,
		Profile: &model.ProfileAttributes{
			ExternalID:   customerID,
			Organization: companyName,
		},
	}
}

func preferredAddress(c *model.Customer) *model.Address {
	if len(c.Addresses) == 0 {
		return nil
	}
	if c.DefaultBillingAddressID != "" {
		for i := range c.Addresses {
			if c.Addresses[i].ID == c.DefaultBillingAddressID {
				return &c.Addresses[i]
			}
		}
	}
	return &c.Addresses[0]
}

func addressPhone(a model.Address) string {
	if a.Phone != "" {
		return a.Phone
	}
	return a.Mobile
}

func addressLocation(a model.Address) *model.ProfileLocation {
	loc := &model.ProfileLocation{
		Address1: joinParts(a.Apartment, a.Building, a.StreetNumber, a.StreetName),
		Address2: joinParts(a.AdditionalStreetInfo, a.AdditionalAddressInfo),
		City:     a.City,
		Country:  a.Country,
		Region:   a.Region,
		Zip:      a.PostalCode,
	}
	if *loc == (model.ProfileLocation{}) {
		return nil
	}
	return loc
}

// joinParts joins the non-empty address fragments with a comma, matching
// the "apartment, building, number, street" layout of the profile schema.
func joinParts(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
