package models

import "strings"

// PaymentProfile is a reusable card stored with a provider. Only derived,
// non-sensitive data is kept here.
type PaymentProfile struct {
	ID                string `json:"id"`
	PartyID           string `json:"party_id"`
	AddressID         string `json:"address_id"`
	GatewayID         string `json:"gateway_id"`
	ProviderReference string `json:"provider_reference"`
	LastFour          string `json:"last_four"`
	ExpiryMonth       string `json:"expiry_month"`
	ExpiryYear        string `json:"expiry_year"`
	Sequence          int    `json:"sequence"`
	Active            bool   `json:"active"`
}

const DefaultProfileSequence = 10

func (p *PaymentProfile) DisplayName(gatewayName string) string {
	if p.LastFour == "" {
		return "Incomplete Card"
	}
	return gatewayName + " " + strings.Repeat("xxxx ", 3) + p.LastFour
}
