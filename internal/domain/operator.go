package domain

import "time"

// OperatorConfig is the default exploitant identity applied to new orders when
// the caller does not supply one. It is always passed explicitly; nothing in
// the codebase reads it as ambient global state.
type OperatorConfig struct {
	Title               Title      `json:"title"`
	Name                string     `json:"name"`
	Address             string     `json:"address"`
	AddressNumber       string     `json:"addressNumber"`
	PostalCode          string     `json:"postalCode"`
	Locality            string     `json:"locality"`
	BCENumber           string     `json:"bceNumber"`
	AuthorizationNumber string     `json:"authorizationNumber"`
	AuthorizationDate   *time.Time `json:"authorizationDate,omitempty"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// DefaultOperatorConfig is the documented default-construction rule: empty
// identity, Société title, placeholder postal code.
func DefaultOperatorConfig() OperatorConfig {
	return OperatorConfig{
		Title:      TitleSociete,
		PostalCode: "0000",
	}
}

// Block converts the config into the operator block stamped on an order.
func (c OperatorConfig) Block() OperatorBlock {
	return OperatorBlock{
		Title:               c.Title,
		Name:                c.Name,
		Address:             c.Address,
		AddressNumber:       c.AddressNumber,
		PostalCode:          c.PostalCode,
		Locality:            c.Locality,
		BCENumber:           c.BCENumber,
		AuthorizationNumber: c.AuthorizationNumber,
		AuthorizationDate:   c.AuthorizationDate,
	}
}
