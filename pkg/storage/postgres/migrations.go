package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations returns the full ordered schema history.
//
// Column names and status tokens are kept in Portuguese because external
// consumers (the panel frontend, exports) match on them literally:
// status in ativo/vencido/cancelado, status_cobranca in
// aguardando/cobrado/pago, tipo_preco in normal/promocional/personalizado.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users and sessions tables",
			SQL: `
				CREATE TABLE IF NOT EXISTS users (
					id BIGSERIAL PRIMARY KEY,
					email VARCHAR(255) NOT NULL UNIQUE,
					password VARCHAR(255) NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS sessions (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					token_hash VARCHAR(64) NOT NULL UNIQUE,
					expires_at TIMESTAMPTZ NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_sessions_token_hash ON sessions(token_hash);
			`,
		},
		{
			Version:     2,
			Description: "Create products and servers tables",
			SQL: `
				CREATE TABLE IF NOT EXISTS products (
					id BIGSERIAL PRIMARY KEY,
					nome VARCHAR(255) NOT NULL,
					tipo VARCHAR(50),
					ativo BOOLEAN NOT NULL DEFAULT TRUE
				);

				CREATE TABLE IF NOT EXISTS servers (
					id BIGSERIAL PRIMARY KEY,
					nome VARCHAR(255) NOT NULL,
					host VARCHAR(255),
					tipo VARCHAR(50),
					ativo BOOLEAN NOT NULL DEFAULT TRUE
				);
			`,
		},
		{
			Version:     3,
			Description: "Create plans table",
			SQL: `
				CREATE TABLE IF NOT EXISTS plans (
					id BIGSERIAL PRIMARY KEY,
					produto_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
					duracao_meses INT NOT NULL CHECK (duracao_meses >= 1),
					valor_centavos BIGINT NOT NULL CHECK (valor_centavos >= 0),
					tipo_preco VARCHAR(20) NOT NULL DEFAULT 'normal',
					UNIQUE (produto_id, tipo_preco, duracao_meses)
				);
			`,
		},
		{
			Version:     4,
			Description: "Create clients table",
			SQL: `
				CREATE TABLE IF NOT EXISTS clients (
					id BIGSERIAL PRIMARY KEY,
					nome VARCHAR(255) NOT NULL,
					usuario_login VARCHAR(255),
					telefone VARCHAR(50),
					produto_id BIGINT NOT NULL REFERENCES products(id),
					servidor_id BIGINT REFERENCES servers(id) ON DELETE SET NULL,
					quantidade_telas INT NOT NULL DEFAULT 1 CHECK (quantidade_telas >= 1),
					tipo_preco VARCHAR(20) NOT NULL DEFAULT 'normal',
					valor_personalizado_centavos BIGINT,
					data_inicio DATE,
					data_vencimento DATE NOT NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'ativo',
					status_cobranca VARCHAR(20) NOT NULL DEFAULT 'aguardando',
					tentativas_cobranca INT NOT NULL DEFAULT 0 CHECK (tentativas_cobranca >= 0),
					ultimo_aviso TIMESTAMPTZ,
					proximo_lembrete TIMESTAMPTZ,
					observacoes TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_clients_data_vencimento ON clients(data_vencimento);
				CREATE INDEX IF NOT EXISTS idx_clients_proximo_lembrete ON clients(proximo_lembrete);
				CREATE INDEX IF NOT EXISTS idx_clients_status ON clients(status);
			`,
		},
		{
			Version:     5,
			Description: "Create sales ledger table",
			SQL: `
				CREATE TABLE IF NOT EXISTS sales (
					id BIGSERIAL PRIMARY KEY,
					cliente_id BIGINT REFERENCES clients(id) ON DELETE SET NULL,
					produto_id BIGINT NOT NULL REFERENCES products(id),
					valor_centavos BIGINT NOT NULL CHECK (valor_centavos >= 0),
					meses_comprados INT NOT NULL CHECK (meses_comprados >= 1),
					data_pagamento TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_sales_data_pagamento ON sales(data_pagamento DESC);
				CREATE INDEX IF NOT EXISTS idx_sales_produto_id ON sales(produto_id);
			`,
		},
	}
}

// RunMigrations applies pending migrations in order, tracking applied
// versions in schema_migrations
func RunMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, m := range Migrations() {
		var exists bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.Version, err)
		}
		if exists {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`,
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
