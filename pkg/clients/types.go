package clients

import (
	"time"

	"github.com/renovapanel/renova/pkg/faults"
)

// AccessStatus says whether a client's subscription is currently usable
type AccessStatus string

const (
	AccessActive    AccessStatus = "ativo"
	AccessExpired   AccessStatus = "vencido"
	AccessCancelled AccessStatus = "cancelado"
)

// Valid reports whether the status is one of the persisted tokens
func (s AccessStatus) Valid() bool {
	switch s {
	case AccessActive, AccessExpired, AccessCancelled:
		return true
	}
	return false
}

// BillingStatus tracks progress of the current renewal cycle
type BillingStatus string

const (
	BillingAwaiting BillingStatus = "aguardando"
	BillingBilled   BillingStatus = "cobrado"
	BillingPaid     BillingStatus = "pago"
)

// Valid reports whether the status is one of the persisted tokens
func (s BillingStatus) Valid() bool {
	switch s {
	case BillingAwaiting, BillingBilled, BillingPaid:
		return true
	}
	return false
}

// PriceTier selects how a client's renewal price is determined
type PriceTier string

const (
	PriceTierNormal      PriceTier = "normal"
	PriceTierPromotional PriceTier = "promocional"
	PriceTierCustom      PriceTier = "personalizado"
)

// Valid reports whether the tier is one of the persisted tokens
func (t PriceTier) Valid() bool {
	switch t {
	case PriceTierNormal, PriceTierPromotional, PriceTierCustom:
		return true
	}
	return false
}

// Client represents one subscription
type Client struct {
	ID                  int64         `json:"id"`
	Name                string        `json:"nome"`
	Login               string        `json:"usuario_login,omitempty"`
	Phone               string        `json:"telefone,omitempty"`
	ProductID           int64         `json:"produto_id"`
	ServerID            *int64        `json:"servidor_id,omitempty"`
	Screens             int           `json:"quantidade_telas"`
	PriceTier           PriceTier     `json:"tipo_preco"`
	CustomPriceCentavos *int64        `json:"valor_personalizado_centavos,omitempty"`
	StartDate           *time.Time    `json:"data_inicio,omitempty"`
	ExpiresAt           time.Time     `json:"data_vencimento"`
	Status              AccessStatus  `json:"status"`
	BillingStatus       BillingStatus `json:"status_cobranca"`
	ReminderAttempts    int           `json:"tentativas_cobranca"`
	LastReminderAt      *time.Time    `json:"ultimo_aviso,omitempty"`
	NextReminderAt      *time.Time    `json:"proximo_lembrete,omitempty"`
	Notes               string        `json:"observacoes,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`

	// Display names joined from the reference tables on list reads
	ProductName string `json:"nome_produto,omitempty"`
	ServerName  string `json:"nome_servidor,omitempty"`
}

// CreateClientRequest carries the fields accepted on client creation.
// New clients always start as ativo/aguardando with zero reminder attempts.
type CreateClientRequest struct {
	Name                string     `json:"nome"`
	Login               string     `json:"usuario_login"`
	Phone               string     `json:"telefone"`
	ProductID           int64      `json:"produto_id"`
	ServerID            *int64     `json:"servidor_id"`
	Screens             int        `json:"quantidade_telas"`
	PriceTier           PriceTier  `json:"tipo_preco"`
	CustomPriceCentavos *int64     `json:"valor_personalizado_centavos"`
	StartDate           *time.Time `json:"data_inicio"`
	ExpiresAt           time.Time  `json:"data_vencimento"`
	Notes               string     `json:"observacoes"`
}

// Validate checks required fields and applies defaults
func (r *CreateClientRequest) Validate() error {
	if r.Name == "" {
		return faults.InvalidInput("nome is required")
	}
	if r.ProductID <= 0 {
		return faults.InvalidInput("produto_id is required")
	}
	if r.ExpiresAt.IsZero() {
		return faults.InvalidInput("data_vencimento is required")
	}
	if r.Screens == 0 {
		r.Screens = 1
	}
	if r.Screens < 1 {
		return faults.InvalidInput("quantidade_telas must be >= 1")
	}
	if r.PriceTier == "" {
		r.PriceTier = PriceTierNormal
	}
	if !r.PriceTier.Valid() {
		return faults.InvalidInput("invalid tipo_preco %q", r.PriceTier)
	}
	if r.PriceTier == PriceTierCustom {
		if r.CustomPriceCentavos == nil || *r.CustomPriceCentavos < 0 {
			return faults.InvalidInput("valor_personalizado_centavos is required for tipo_preco personalizado")
		}
	}
	return nil
}

// UpdateClientRequest is a raw overwrite of the mutable fields, statuses
// included. This is the administrative edit path: it bypasses the guarded
// lifecycle transitions on purpose (e.g. manual cancellation).
type UpdateClientRequest struct {
	Name                string        `json:"nome"`
	Login               string        `json:"usuario_login"`
	Phone               string        `json:"telefone"`
	ProductID           int64         `json:"produto_id"`
	ServerID            *int64        `json:"servidor_id"`
	Screens             int           `json:"quantidade_telas"`
	PriceTier           PriceTier     `json:"tipo_preco"`
	CustomPriceCentavos *int64        `json:"valor_personalizado_centavos"`
	StartDate           *time.Time    `json:"data_inicio"`
	ExpiresAt           time.Time     `json:"data_vencimento"`
	Status              AccessStatus  `json:"status"`
	BillingStatus       BillingStatus `json:"status_cobranca"`
	Notes               string        `json:"observacoes"`
}

// Validate checks the overwrite for token and constraint violations
func (r *UpdateClientRequest) Validate() error {
	if r.Name == "" {
		return faults.InvalidInput("nome is required")
	}
	if r.ProductID <= 0 {
		return faults.InvalidInput("produto_id is required")
	}
	if r.ExpiresAt.IsZero() {
		return faults.InvalidInput("data_vencimento is required")
	}
	if r.Screens < 1 {
		return faults.InvalidInput("quantidade_telas must be >= 1")
	}
	if !r.PriceTier.Valid() {
		return faults.InvalidInput("invalid tipo_preco %q", r.PriceTier)
	}
	if !r.Status.Valid() {
		return faults.InvalidInput("invalid status %q", r.Status)
	}
	if !r.BillingStatus.Valid() {
		return faults.InvalidInput("invalid status_cobranca %q", r.BillingStatus)
	}
	return nil
}
