package billing

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/renovapanel/renova/pkg/clients"
	"github.com/renovapanel/renova/pkg/faults"
	"github.com/renovapanel/renova/pkg/observability"
)

// Service defines the renewal lifecycle operations
type Service interface {
	// GenerateReminder renders the reminder message for a client and, in
	// the same transaction, marks the client as billed, bumps the attempt
	// counter and schedules the next reminder. Rendering and the state
	// change are not separable: calling this commits the transition.
	GenerateReminder(ctx context.Context, clientID int64) (*ReminderResult, error)

	// ConfirmPayment extends the client's expiry by 30 days per month
	// purchased from max(current expiry, today), resets the billing
	// cycle and appends one sale record. Client update and sale insert
	// commit together or not at all.
	ConfirmPayment(ctx context.Context, clientID int64, req *ConfirmPaymentRequest) (*PaymentResult, error)
}

// PostgresService implements Service using PostgreSQL
type PostgresService struct {
	db      *sql.DB
	logger  *observability.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB, logger *observability.Logger, metrics *observability.Metrics) *PostgresService {
	return &PostgresService{
		db:      db,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// GenerateReminder implements Service
func (s *PostgresService) GenerateReminder(ctx context.Context, clientID int64) (*ReminderResult, error) {
	result, err := s.generateReminder(ctx, clientID)
	if err != nil && faults.KindOf(err) == faults.KindStorage {
		s.metrics.RecordStorageError("generate_reminder")
	}
	return result, err
}

func (s *PostgresService) generateReminder(ctx context.Context, clientID int64) (*ReminderResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, faults.Storage(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	c := &clients.Client{ID: clientID}
	var login sql.NullString
	var customPrice sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT nome, usuario_login, produto_id, tipo_preco,
			valor_personalizado_centavos, data_vencimento, tentativas_cobranca
		FROM clients WHERE id = $1 FOR UPDATE`,
		clientID,
	).Scan(&c.Name, &login, &c.ProductID, &c.PriceTier, &customPrice, &c.ExpiresAt, &c.ReminderAttempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, faults.NotFound("client %d not found", clientID)
	}
	if err != nil {
		return nil, faults.Storage(err, "failed to lock client %d", clientID)
	}
	c.Login = login.String
	if customPrice.Valid {
		c.CustomPriceCentavos = &customPrice.Int64
	}

	// The personalizado tier renders its override price and never
	// consults the plan catalog.
	var lines []planLine
	if c.PriceTier != clients.PriceTierCustom {
		lines, err = s.planLinesFor(ctx, tx, c.ProductID, c.PriceTier)
		if err != nil {
			return nil, err
		}
	}

	message := renderReminder(c, lines)

	now := s.now()
	next := now.Add(reminderInterval)
	_, err = tx.ExecContext(ctx, `
		UPDATE clients
		SET status_cobranca = 'cobrado', ultimo_aviso = $1, proximo_lembrete = $2,
			tentativas_cobranca = tentativas_cobranca + 1, updated_at = NOW()
		WHERE id = $3`,
		now, next, clientID,
	)
	if err != nil {
		return nil, faults.Storage(err, "failed to mark client %d as billed", clientID)
	}

	if err := tx.Commit(); err != nil {
		return nil, faults.Storage(err, "failed to commit reminder for client %d", clientID)
	}

	s.metrics.RemindersIssuedTotal.Inc()
	s.logger.WithFields(map[string]interface{}{
		"client_id": clientID,
		"attempts":  c.ReminderAttempts + 1,
	}).Info("reminder issued")

	return &ReminderResult{
		Message:          message,
		ReminderAttempts: c.ReminderAttempts + 1,
		LastReminderAt:   now,
		NextReminderAt:   next,
	}, nil
}

func (s *PostgresService) planLinesFor(ctx context.Context, tx *sql.Tx, productID int64, tier clients.PriceTier) ([]planLine, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT duracao_meses, valor_centavos FROM plans
		WHERE produto_id = $1 AND tipo_preco = $2
		ORDER BY duracao_meses ASC`,
		productID, tier,
	)
	if err != nil {
		return nil, faults.Storage(err, "failed to load plans for product %d", productID)
	}
	defer rows.Close()

	var lines []planLine
	for rows.Next() {
		var l planLine
		if err := rows.Scan(&l.DurationMonths, &l.PriceCentavos); err != nil {
			return nil, faults.Storage(err, "failed to scan plan")
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage(err, "failed to iterate plans")
	}
	return lines, nil
}

// ConfirmPayment implements Service
func (s *PostgresService) ConfirmPayment(ctx context.Context, clientID int64, req *ConfirmPaymentRequest) (*PaymentResult, error) {
	result, err := s.confirmPayment(ctx, clientID, req)
	if err != nil && faults.KindOf(err) == faults.KindStorage {
		s.metrics.RecordStorageError("confirm_payment")
	}
	return result, err
}

func (s *PostgresService) confirmPayment(ctx context.Context, clientID int64, req *ConfirmPaymentRequest) (*PaymentResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, faults.Storage(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var productID int64
	var expiresAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT produto_id, data_vencimento FROM clients WHERE id = $1 FOR UPDATE`,
		clientID,
	).Scan(&productID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, faults.NotFound("client %d not found", clientID)
	}
	if err != nil {
		return nil, faults.Storage(err, "failed to lock client %d", clientID)
	}

	newExpiry := extendExpiry(expiresAt, s.now(), req.MonthsPurchased)

	_, err = tx.ExecContext(ctx, `
		UPDATE clients
		SET data_vencimento = $1, status = 'ativo', status_cobranca = 'pago',
			tentativas_cobranca = 0, ultimo_aviso = NULL, proximo_lembrete = NULL,
			updated_at = NOW()
		WHERE id = $2`,
		newExpiry, clientID,
	)
	if err != nil {
		return nil, faults.Storage(err, "failed to renew client %d", clientID)
	}

	var saleID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO sales (cliente_id, produto_id, valor_centavos, meses_comprados)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		clientID, productID, req.AmountCentavos, req.MonthsPurchased,
	).Scan(&saleID)
	if err != nil {
		return nil, faults.Storage(err, "failed to record sale for client %d", clientID)
	}

	if err := tx.Commit(); err != nil {
		return nil, faults.Storage(err, "failed to commit payment for client %d", clientID)
	}

	s.metrics.PaymentsConfirmedTotal.Inc()
	s.metrics.RevenueCentavosTotal.Add(float64(req.AmountCentavos))
	s.logger.WithFields(map[string]interface{}{
		"client_id":       clientID,
		"sale_id":         saleID,
		"months":          req.MonthsPurchased,
		"amount_centavos": req.AmountCentavos,
		"new_vencimento":  newExpiry.Format("2006-01-02"),
	}).Info("payment confirmed")

	return &PaymentResult{SaleID: saleID, NewExpiresAt: newExpiry}, nil
}
