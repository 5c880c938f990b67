package catalog

import (
	"github.com/renovapanel/renova/pkg/clients"
	"github.com/renovapanel/renova/pkg/faults"
)

// Product represents a sellable offering (IPTV package, VPN access, ...)
type Product struct {
	ID     int64  `json:"id"`
	Name   string `json:"nome"`
	Type   string `json:"tipo,omitempty"`
	Active bool   `json:"ativo"`
}

// Validate checks required fields
func (p *Product) Validate() error {
	if p.Name == "" {
		return faults.InvalidInput("nome is required")
	}
	return nil
}

// Server represents a delivery server a client can be assigned to
type Server struct {
	ID     int64  `json:"id"`
	Name   string `json:"nome"`
	Host   string `json:"host,omitempty"`
	Type   string `json:"tipo,omitempty"`
	Active bool   `json:"ativo"`
}

// Validate checks required fields
func (s *Server) Validate() error {
	if s.Name == "" {
		return faults.InvalidInput("nome is required")
	}
	return nil
}

// Plan is a priced (duration, price) offering for a product and tier.
// Plans only exist for the catalog tiers; the personalizado tier is a
// per-client override and never has plan rows.
type Plan struct {
	ID              int64             `json:"id"`
	ProductID       int64             `json:"produto_id"`
	DurationMonths  int               `json:"duracao_meses"`
	PriceCentavos   int64             `json:"valor_centavos"`
	PriceTier       clients.PriceTier `json:"tipo_preco"`

	// Joined on list reads
	ProductName string `json:"nome_produto,omitempty"`
}

// Validate checks plan constraints
func (p *Plan) Validate() error {
	if p.ProductID <= 0 {
		return faults.InvalidInput("produto_id is required")
	}
	if p.DurationMonths < 1 {
		return faults.InvalidInput("duracao_meses must be >= 1")
	}
	if p.PriceCentavos < 0 {
		return faults.InvalidInput("valor_centavos must be >= 0")
	}
	switch p.PriceTier {
	case clients.PriceTierNormal, clients.PriceTierPromotional:
	case "":
		p.PriceTier = clients.PriceTierNormal
	default:
		return faults.InvalidInput("invalid tipo_preco %q for a plan", p.PriceTier)
	}
	return nil
}
