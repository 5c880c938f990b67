package reports

import (
	"context"
	"database/sql"

	"github.com/renovapanel/renova/pkg/faults"
)

// Service defines the read-side operations
type Service interface {
	ComputeStats(ctx context.Context) (*Stats, error)
	ListSales(ctx context.Context, filter *SalesFilter) ([]*SaleRecord, error)
}

// DBPicker selects a database for read queries. A connection manager
// with replicas satisfies it; a bare primary can be wrapped to as well.
type DBPicker interface {
	Replica() *sql.DB
}

// PostgresService implements Service using PostgreSQL
type PostgresService struct {
	db DBPicker
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db DBPicker) *PostgresService {
	return &PostgresService{db: db}
}

// SingleDB adapts a lone *sql.DB to the DBPicker interface.
type SingleDB struct {
	DB *sql.DB
}

// Replica implements DBPicker
func (s SingleDB) Replica() *sql.DB {
	return s.DB
}

// ComputeStats implements Service. All counts and sums reflect the
// moment each query runs; the snapshot is not transactional.
func (s *PostgresService) ComputeStats(ctx context.Context) (*Stats, error) {
	db := s.db.Replica()
	stats := &Stats{
		RevenueByProduct: []*ProductRevenue{},
		LastSales:        []*SaleRecord{},
	}

	counts := []struct {
		dest  *int64
		query string
	}{
		{&stats.TotalActive, `SELECT COUNT(*) FROM clients WHERE status = 'ativo'`},
		{&stats.TotalExpired, `SELECT COUNT(*) FROM clients WHERE status = 'vencido'`},
		{&stats.ExpiringSoon, `
			SELECT COUNT(*) FROM clients
			WHERE status = 'ativo'
			AND data_vencimento BETWEEN NOW() AND NOW() + INTERVAL '3 days'`},
		// Clients never billed have proximo_lembrete NULL and are
		// excluded here: this counts elapsed reminder windows, not
		// never-contacted clients.
		{&stats.WaitingReminder, `
			SELECT COUNT(*) FROM clients
			WHERE status_cobranca != 'pago'
			AND proximo_lembrete <= NOW()`},
	}
	for _, c := range counts {
		if err := db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, faults.Storage(err, "failed to compute client counts")
		}
	}

	err := db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(valor_centavos), 0) FROM sales
		WHERE DATE_TRUNC('month', data_pagamento) = DATE_TRUNC('month', CURRENT_DATE)`,
	).Scan(&stats.MonthlyRevenueCentavos)
	if err != nil {
		return nil, faults.Storage(err, "failed to compute monthly revenue")
	}

	rows, err := db.QueryContext(ctx, `
		SELECT p.nome, SUM(s.valor_centavos) AS total_centavos
		FROM sales s
		JOIN products p ON s.produto_id = p.id
		WHERE DATE_TRUNC('month', s.data_pagamento) = DATE_TRUNC('month', CURRENT_DATE)
		GROUP BY p.nome
		ORDER BY total_centavos DESC`)
	if err != nil {
		return nil, faults.Storage(err, "failed to compute revenue by product")
	}
	defer rows.Close()
	for rows.Next() {
		r := &ProductRevenue{}
		if err := rows.Scan(&r.ProductName, &r.TotalCentavos); err != nil {
			return nil, faults.Storage(err, "failed to scan product revenue")
		}
		stats.RevenueByProduct = append(stats.RevenueByProduct, r)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage(err, "failed to iterate product revenue")
	}

	lastSales, err := s.querySales(ctx, db, salesQuery+` ORDER BY s.data_pagamento DESC LIMIT 5`)
	if err != nil {
		return nil, err
	}
	stats.LastSales = lastSales

	return stats, nil
}

const salesQuery = `
	SELECT s.id, s.cliente_id, s.produto_id, s.valor_centavos, s.meses_comprados,
		s.data_pagamento, c.nome AS cliente_nome, p.nome AS produto_nome
	FROM sales s
	LEFT JOIN clients c ON s.cliente_id = c.id
	LEFT JOIN products p ON s.produto_id = p.id`

// ListSales implements Service
func (s *PostgresService) ListSales(ctx context.Context, filter *SalesFilter) ([]*SaleRecord, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query := salesQuery
	var args []interface{}
	switch {
	case filter != nil && filter.Month != nil:
		query += ` WHERE EXTRACT(MONTH FROM s.data_pagamento) = $1 AND EXTRACT(YEAR FROM s.data_pagamento) = $2`
		args = append(args, *filter.Month, *filter.Year)
	case filter != nil && filter.Year != nil:
		query += ` WHERE EXTRACT(YEAR FROM s.data_pagamento) = $1`
		args = append(args, *filter.Year)
	}
	query += ` ORDER BY s.data_pagamento DESC`

	return s.querySales(ctx, s.db.Replica(), query, args...)
}

func (s *PostgresService) querySales(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]*SaleRecord, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, faults.Storage(err, "failed to list sales")
	}
	defer rows.Close()

	sales := []*SaleRecord{}
	for rows.Next() {
		rec := &SaleRecord{}
		var clientID sql.NullInt64
		var clientName, productName sql.NullString
		err := rows.Scan(&rec.ID, &clientID, &rec.ProductID, &rec.AmountCentavos,
			&rec.MonthsPurchased, &rec.PaidAt, &clientName, &productName)
		if err != nil {
			return nil, faults.Storage(err, "failed to scan sale")
		}
		if clientID.Valid {
			rec.ClientID = &clientID.Int64
		}
		rec.ClientName = clientName.String
		rec.ProductName = productName.String
		sales = append(sales, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage(err, "failed to iterate sales")
	}
	return sales, nil
}
