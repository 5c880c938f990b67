package clients

import (
	"context"
	"database/sql"

	"github.com/renovapanel/renova/pkg/faults"
)

// Service defines the client record store operations
type Service interface {
	Create(ctx context.Context, req *CreateClientRequest) (*Client, error)
	Get(ctx context.Context, id int64) (*Client, error)
	Update(ctx context.Context, id int64, req *UpdateClientRequest) (*Client, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Client, error)
}

// PostgresService implements Service using PostgreSQL
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

const clientColumns = `id, nome, usuario_login, telefone, produto_id, servidor_id,
	quantidade_telas, tipo_preco, valor_personalizado_centavos, data_inicio,
	data_vencimento, status, status_cobranca, tentativas_cobranca,
	ultimo_aviso, proximo_lembrete, observacoes, created_at, updated_at`

// Create inserts a new client. The lifecycle defaults (ativo, aguardando,
// zero attempts, null reminder fields) come from the schema.
func (s *PostgresService) Create(ctx context.Context, req *CreateClientRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO clients (nome, usuario_login, telefone, produto_id, servidor_id,
			quantidade_telas, tipo_preco, valor_personalizado_centavos, data_inicio,
			data_vencimento, observacoes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + clientColumns

	row := s.db.QueryRowContext(ctx, query,
		req.Name, nullString(req.Login), nullString(req.Phone), req.ProductID, req.ServerID,
		req.Screens, req.PriceTier, req.CustomPriceCentavos, req.StartDate,
		req.ExpiresAt, nullString(req.Notes),
	)

	client, err := scanClient(row)
	if err != nil {
		return nil, faults.Storage(err, "failed to create client")
	}
	return client, nil
}

// Get retrieves a client by id
func (s *PostgresService) Get(ctx context.Context, id int64) (*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := scanClient(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, faults.NotFound("client %d not found", id)
	}
	if err != nil {
		return nil, faults.Storage(err, "failed to get client %d", id)
	}
	return client, nil
}

// Update overwrites the mutable fields of a client, statuses included
func (s *PostgresService) Update(ctx context.Context, id int64, req *UpdateClientRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		UPDATE clients
		SET nome = $1, usuario_login = $2, telefone = $3, produto_id = $4,
			servidor_id = $5, quantidade_telas = $6, tipo_preco = $7,
			valor_personalizado_centavos = $8, data_inicio = $9,
			data_vencimento = $10, status = $11, status_cobranca = $12,
			observacoes = $13, updated_at = NOW()
		WHERE id = $14
		RETURNING ` + clientColumns

	row := s.db.QueryRowContext(ctx, query,
		req.Name, nullString(req.Login), nullString(req.Phone), req.ProductID,
		req.ServerID, req.Screens, req.PriceTier,
		req.CustomPriceCentavos, req.StartDate,
		req.ExpiresAt, req.Status, req.BillingStatus,
		nullString(req.Notes), id,
	)

	client, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, faults.NotFound("client %d not found", id)
	}
	if err != nil {
		return nil, faults.Storage(err, "failed to update client %d", id)
	}
	return client, nil
}

// Delete removes a client. Ledger entries survive: sales.cliente_id is
// set to NULL by the schema rather than cascading the delete.
func (s *PostgresService) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return faults.Storage(err, "failed to delete client %d", id)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return faults.Storage(err, "failed to get rows affected")
	}
	if affected == 0 {
		return faults.NotFound("client %d not found", id)
	}
	return nil
}

// List returns all clients joined with product and server display names,
// ordered by expiration date ascending (soonest lapse first)
func (s *PostgresService) List(ctx context.Context) ([]*Client, error) {
	query := `
		SELECT c.id, c.nome, c.usuario_login, c.telefone, c.produto_id, c.servidor_id,
			c.quantidade_telas, c.tipo_preco, c.valor_personalizado_centavos, c.data_inicio,
			c.data_vencimento, c.status, c.status_cobranca, c.tentativas_cobranca,
			c.ultimo_aviso, c.proximo_lembrete, c.observacoes, c.created_at, c.updated_at,
			p.nome AS nome_produto, s.nome AS nome_servidor
		FROM clients c
		LEFT JOIN products p ON c.produto_id = p.id
		LEFT JOIN servers s ON c.servidor_id = s.id
		ORDER BY c.data_vencimento ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, faults.Storage(err, "failed to list clients")
	}
	defer rows.Close()

	var result []*Client
	for rows.Next() {
		client, err := scanJoinedClient(rows)
		if err != nil {
			return nil, faults.Storage(err, "failed to scan client")
		}
		result = append(result, client)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage(err, "failed to iterate clients")
	}
	return result, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClient(row rowScanner) (*Client, error) {
	c := &Client{}
	var (
		login, phone, notes    sql.NullString
		serverID, customPrice  sql.NullInt64
		startDate              sql.NullTime
		lastReminder, nextRem  sql.NullTime
	)

	err := row.Scan(
		&c.ID, &c.Name, &login, &phone, &c.ProductID, &serverID,
		&c.Screens, &c.PriceTier, &customPrice, &startDate,
		&c.ExpiresAt, &c.Status, &c.BillingStatus, &c.ReminderAttempts,
		&lastReminder, &nextRem, &notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	applyNullables(c, login, phone, notes, serverID, customPrice, startDate, lastReminder, nextRem)
	return c, nil
}

func scanJoinedClient(rows *sql.Rows) (*Client, error) {
	c := &Client{}
	var (
		login, phone, notes       sql.NullString
		serverID, customPrice     sql.NullInt64
		startDate                 sql.NullTime
		lastReminder, nextRem     sql.NullTime
		productName, serverName   sql.NullString
	)

	err := rows.Scan(
		&c.ID, &c.Name, &login, &phone, &c.ProductID, &serverID,
		&c.Screens, &c.PriceTier, &customPrice, &startDate,
		&c.ExpiresAt, &c.Status, &c.BillingStatus, &c.ReminderAttempts,
		&lastReminder, &nextRem, &notes, &c.CreatedAt, &c.UpdatedAt,
		&productName, &serverName,
	)
	if err != nil {
		return nil, err
	}

	applyNullables(c, login, phone, notes, serverID, customPrice, startDate, lastReminder, nextRem)
	c.ProductName = productName.String
	c.ServerName = serverName.String
	return c, nil
}

func applyNullables(c *Client, login, phone, notes sql.NullString,
	serverID, customPrice sql.NullInt64, startDate, lastReminder, nextReminder sql.NullTime) {
	c.Login = login.String
	c.Phone = phone.String
	c.Notes = notes.String
	if serverID.Valid {
		c.ServerID = &serverID.Int64
	}
	if customPrice.Valid {
		c.CustomPriceCentavos = &customPrice.Int64
	}
	if startDate.Valid {
		c.StartDate = &startDate.Time
	}
	if lastReminder.Valid {
		c.LastReminderAt = &lastReminder.Time
	}
	if nextReminder.Valid {
		c.NextReminderAt = &nextReminder.Time
	}
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
