package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/renovapanel/renova/pkg/faults"
)

// Service defines the reference-data operations
type Service interface {
	ListProducts(ctx context.Context) ([]*Product, error)
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, p *Product) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListServers(ctx context.Context) ([]*Server, error)
	CreateServer(ctx context.Context, s *Server) (*Server, error)
	UpdateServer(ctx context.Context, id int64, s *Server) (*Server, error)
	DeleteServer(ctx context.Context, id int64) error

	ListPlans(ctx context.Context) ([]*Plan, error)
	ListPlansByProduct(ctx context.Context, productID int64) ([]*Plan, error)
	CreatePlan(ctx context.Context, p *Plan) (*Plan, error)
	UpdatePlan(ctx context.Context, id int64, p *Plan) (*Plan, error)
	DeletePlan(ctx context.Context, id int64) error
}

// PostgresService implements Service using PostgreSQL
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

// uniqueViolation is the PostgreSQL error code for a unique constraint hit
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// ListProducts returns all products ordered by id
func (s *PostgresService) ListProducts(ctx context.Context) ([]*Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, nome, tipo, ativo FROM products ORDER BY id ASC`)
	if err != nil {
		return nil, faults.Storage(err, "failed to list products")
	}
	defer rows.Close()

	var result []*Product
	for rows.Next() {
		p := &Product{}
		var typ sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &typ, &p.Active); err != nil {
			return nil, faults.Storage(err, "failed to scan product")
		}
		p.Type = typ.String
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage(err, "failed to iterate products")
	}
	return result, nil
}

// CreateProduct inserts a new product
func (s *PostgresService) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO products (nome, tipo, ativo) VALUES ($1, $2, $3) RETURNING id`,
		p.Name, nullString(p.Type), p.Active,
	).Scan(&p.ID)
	if err != nil {
		return nil, faults.Storage(err, "failed to create product")
	}
	return p, nil
}

// UpdateProduct overwrites a product
func (s *PostgresService) UpdateProduct(ctx context.Context, id int64, p *Product) (*Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE products SET nome = $1, tipo = $2, ativo = $3 WHERE id = $4`,
		p.Name, nullString(p.Type), p.Active, id,
	)
	if err != nil {
		return nil, faults.Storage(err, "failed to update product %d", id)
	}
	if err := requireAffected(result, "product", id); err != nil {
		return nil, err
	}
	p.ID = id
	return p, nil
}

// DeleteProduct removes a product
func (s *PostgresService) DeleteProduct(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return faults.Storage(err, "failed to delete product %d", id)
	}
	return requireAffected(result, "product", id)
}

// ListServers returns all servers ordered by id
func (s *PostgresService) ListServers(ctx context.Context) ([]*Server, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, nome, host, tipo, ativo FROM servers ORDER BY id ASC`)
	if err != nil {
		return nil, faults.Storage(err, "failed to list servers")
	}
	defer rows.Close()

	var result []*Server
	for rows.Next() {
		srv := &Server{}
		var host, typ sql.NullString
		if err := rows.Scan(&srv.ID, &srv.Name, &host, &typ, &srv.Active); err != nil {
			return nil, faults.Storage(err, "failed to scan server")
		}
		srv.Host = host.String
		srv.Type = typ.String
		result = append(result, srv)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage(err, "failed to iterate servers")
	}
	return result, nil
}

// CreateServer inserts a new server
func (s *PostgresService) CreateServer(ctx context.Context, srv *Server) (*Server, error) {
	if err := srv.Validate(); err != nil {
		return nil, err
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO servers (nome, host, tipo, ativo) VALUES ($1, $2, $3, $4) RETURNING id`,
		srv.Name, nullString(srv.Host), nullString(srv.Type), srv.Active,
	).Scan(&srv.ID)
	if err != nil {
		return nil, faults.Storage(err, "failed to create server")
	}
	return srv, nil
}

// UpdateServer overwrites a server
func (s *PostgresService) UpdateServer(ctx context.Context, id int64, srv *Server) (*Server, error) {
	if err := srv.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE servers SET nome = $1, host = $2, tipo = $3, ativo = $4 WHERE id = $5`,
		srv.Name, nullString(srv.Host), nullString(srv.Type), srv.Active, id,
	)
	if err != nil {
		return nil, faults.Storage(err, "failed to update server %d", id)
	}
	if err := requireAffected(result, "server", id); err != nil {
		return nil, err
	}
	srv.ID = id
	return srv, nil
}

// DeleteServer removes a server. Clients pointing at it keep their rows;
// the schema nulls the reference.
func (s *PostgresService) DeleteServer(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM servers WHERE id = $1`, id)
	if err != nil {
		return faults.Storage(err, "failed to delete server %d", id)
	}
	return requireAffected(result, "server", id)
}

// ListPlans returns all plans joined with their product name
func (s *PostgresService) ListPlans(ctx context.Context) ([]*Plan, error) {
	query := `
		SELECT plans.id, plans.produto_id, plans.duracao_meses, plans.valor_centavos,
			plans.tipo_preco, products.nome AS nome_produto
		FROM plans
		JOIN products ON plans.produto_id = products.id
		ORDER BY plans.produto_id, plans.tipo_preco, plans.duracao_meses ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, faults.Storage(err, "failed to list plans")
	}
	defer rows.Close()

	var result []*Plan
	for rows.Next() {
		p := &Plan{}
		if err := rows.Scan(&p.ID, &p.ProductID, &p.DurationMonths, &p.PriceCentavos, &p.PriceTier, &p.ProductName); err != nil {
			return nil, faults.Storage(err, "failed to scan plan")
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage(err, "failed to iterate plans")
	}
	return result, nil
}

// ListPlansByProduct returns a product's plans ordered ascending by duration
func (s *PostgresService) ListPlansByProduct(ctx context.Context, productID int64) ([]*Plan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, produto_id, duracao_meses, valor_centavos, tipo_preco
		 FROM plans WHERE produto_id = $1 ORDER BY duracao_meses ASC`,
		productID,
	)
	if err != nil {
		return nil, faults.Storage(err, "failed to list plans for product %d", productID)
	}
	defer rows.Close()

	var result []*Plan
	for rows.Next() {
		p := &Plan{}
		if err := rows.Scan(&p.ID, &p.ProductID, &p.DurationMonths, &p.PriceCentavos, &p.PriceTier); err != nil {
			return nil, faults.Storage(err, "failed to scan plan")
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Storage(err, "failed to iterate plans")
	}
	return result, nil
}

// CreatePlan inserts a new plan. Duplicate (product, tier, duration)
// combinations are rejected as invalid input.
func (s *PostgresService) CreatePlan(ctx context.Context, p *Plan) (*Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO plans (produto_id, duracao_meses, valor_centavos, tipo_preco)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		p.ProductID, p.DurationMonths, p.PriceCentavos, p.PriceTier,
	).Scan(&p.ID)
	if isUniqueViolation(err) {
		return nil, faults.InvalidInput("a %s plan of %d month(s) already exists for product %d",
			p.PriceTier, p.DurationMonths, p.ProductID)
	}
	if err != nil {
		return nil, faults.Storage(err, "failed to create plan")
	}
	return p, nil
}

// UpdatePlan overwrites a plan's duration, price and tier
func (s *PostgresService) UpdatePlan(ctx context.Context, id int64, p *Plan) (*Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE plans SET duracao_meses = $1, valor_centavos = $2, tipo_preco = $3 WHERE id = $4`,
		p.DurationMonths, p.PriceCentavos, p.PriceTier, id,
	)
	if isUniqueViolation(err) {
		return nil, faults.InvalidInput("a %s plan of %d month(s) already exists for this product",
			p.PriceTier, p.DurationMonths)
	}
	if err != nil {
		return nil, faults.Storage(err, "failed to update plan %d", id)
	}
	if err := requireAffected(result, "plan", id); err != nil {
		return nil, err
	}
	p.ID = id
	return p, nil
}

// DeletePlan removes a plan
func (s *PostgresService) DeletePlan(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return faults.Storage(err, "failed to delete plan %d", id)
	}
	return requireAffected(result, "plan", id)
}

func requireAffected(result sql.Result, entity string, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return faults.Storage(err, "failed to get rows affected")
	}
	if affected == 0 {
		return faults.NotFound("%s %d not found", entity, id)
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
