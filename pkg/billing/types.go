package billing

import (
	"time"

	"github.com/renovapanel/renova/pkg/faults"
)

// ReminderResult carries the rendered message plus the billing fields
// committed alongside it.
type ReminderResult struct {
	Message          string    `json:"message"`
	ReminderAttempts int       `json:"tentativas_cobranca"`
	LastReminderAt   time.Time `json:"ultimo_aviso"`
	NextReminderAt   time.Time `json:"proximo_lembrete"`
}

// ConfirmPaymentRequest is the admin's confirmation of a received payment.
type ConfirmPaymentRequest struct {
	MonthsPurchased int   `json:"meses_comprados"`
	AmountCentavos  int64 `json:"valor_pago_centavos"`
}

// Validate checks the purchase constraints
func (r *ConfirmPaymentRequest) Validate() error {
	if r.MonthsPurchased < 1 {
		return faults.InvalidInput("meses_comprados must be >= 1")
	}
	if r.AmountCentavos < 0 {
		return faults.InvalidInput("valor_pago_centavos must be >= 0")
	}
	return nil
}

// PaymentResult reports the outcome of a confirmed payment.
type PaymentResult struct {
	SaleID       int64     `json:"sale_id"`
	NewExpiresAt time.Time `json:"new_vencimento"`
}
