package reports

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renovapanel/renova/pkg/faults"
)

func newTestService(t *testing.T) (*PostgresService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresService(SingleDB{DB: db}), mock
}

func countRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

var saleColumns = []string{
	"id", "cliente_id", "produto_id", "valor_centavos", "meses_comprados",
	"data_pagamento", "cliente_nome", "produto_nome",
}

func TestComputeStats(t *testing.T) {
	svc, mock := newTestService(t)
	paidAt := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`status = 'ativo'`).WillReturnRows(countRows(3))
	mock.ExpectQuery(`status = 'vencido'`).WillReturnRows(countRows(2))
	mock.ExpectQuery(`INTERVAL '3 days'`).WillReturnRows(countRows(1))
	mock.ExpectQuery(`proximo_lembrete <= NOW`).WillReturnRows(countRows(4))
	mock.ExpectQuery(`COALESCE\(SUM\(valor_centavos\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(125000))
	mock.ExpectQuery(`GROUP BY p.nome`).
		WillReturnRows(sqlmock.NewRows([]string{"nome", "total_centavos"}).
			AddRow("IPTV Premium", 90000).
			AddRow("VPN Basic", 35000))
	mock.ExpectQuery(`ORDER BY s.data_pagamento DESC LIMIT 5`).
		WillReturnRows(sqlmock.NewRows(saleColumns).
			AddRow(42, 7, 1, 9000, 2, paidAt, "Maria Silva", "IPTV Premium"))

	stats, err := svc.ComputeStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalActive)
	assert.Equal(t, int64(2), stats.TotalExpired)
	assert.Equal(t, int64(1), stats.ExpiringSoon)
	assert.Equal(t, int64(4), stats.WaitingReminder)
	assert.Equal(t, int64(125000), stats.MonthlyRevenueCentavos)
	require.Len(t, stats.RevenueByProduct, 2)
	assert.Equal(t, "IPTV Premium", stats.RevenueByProduct[0].ProductName)
	require.Len(t, stats.LastSales, 1)
	assert.Equal(t, "Maria Silva", stats.LastSales[0].ClientName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComputeStats_EmptyStore(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`status = 'ativo'`).WillReturnRows(countRows(0))
	mock.ExpectQuery(`status = 'vencido'`).WillReturnRows(countRows(0))
	mock.ExpectQuery(`INTERVAL '3 days'`).WillReturnRows(countRows(0))
	mock.ExpectQuery(`proximo_lembrete <= NOW`).WillReturnRows(countRows(0))
	mock.ExpectQuery(`COALESCE\(SUM\(valor_centavos\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))
	mock.ExpectQuery(`GROUP BY p.nome`).
		WillReturnRows(sqlmock.NewRows([]string{"nome", "total_centavos"}))
	mock.ExpectQuery(`ORDER BY s.data_pagamento DESC LIMIT 5`).
		WillReturnRows(sqlmock.NewRows(saleColumns))

	stats, err := svc.ComputeStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.MonthlyRevenueCentavos)
	assert.NotNil(t, stats.RevenueByProduct)
	assert.Empty(t, stats.RevenueByProduct)
	assert.NotNil(t, stats.LastSales)
	assert.Empty(t, stats.LastSales)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSales(t *testing.T) {
	paidAt := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

	t.Run("unfiltered", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery(`LEFT JOIN clients c ON s.cliente_id = c.id`).
			WillReturnRows(sqlmock.NewRows(saleColumns).
				AddRow(2, 7, 1, 9000, 2, paidAt, "Maria Silva", "IPTV Premium").
				AddRow(1, nil, 1, 3500, 1, paidAt.Add(-time.Hour), nil, "IPTV Premium"))

		sales, err := svc.ListSales(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, sales, 2)
		require.NotNil(t, sales[0].ClientID)
		assert.Equal(t, int64(7), *sales[0].ClientID)
		assert.Nil(t, sales[1].ClientID)
		assert.Equal(t, "", sales[1].ClientName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("month and year filter", func(t *testing.T) {
		svc, mock := newTestService(t)
		month, year := 6, 2025

		mock.ExpectQuery(`EXTRACT\(MONTH FROM s.data_pagamento\) = \$1 AND EXTRACT\(YEAR FROM s.data_pagamento\) = \$2`).
			WithArgs(month, year).
			WillReturnRows(sqlmock.NewRows(saleColumns))

		_, err := svc.ListSales(context.Background(), &SalesFilter{Month: &month, Year: &year})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("year only filter", func(t *testing.T) {
		svc, mock := newTestService(t)
		year := 2025

		mock.ExpectQuery(`EXTRACT\(YEAR FROM s.data_pagamento\) = \$1`).
			WithArgs(year).
			WillReturnRows(sqlmock.NewRows(saleColumns))

		_, err := svc.ListSales(context.Background(), &SalesFilter{Year: &year})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("month without year rejected", func(t *testing.T) {
		svc, _ := newTestService(t)
		month := 6

		_, err := svc.ListSales(context.Background(), &SalesFilter{Month: &month})
		require.Error(t, err)
		assert.True(t, faults.IsInvalidInput(err))
	})

	t.Run("month out of range rejected", func(t *testing.T) {
		svc, _ := newTestService(t)
		month, year := 13, 2025

		_, err := svc.ListSales(context.Background(), &SalesFilter{Month: &month, Year: &year})
		require.Error(t, err)
		assert.True(t, faults.IsInvalidInput(err))
	})
}
