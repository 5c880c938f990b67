package billing

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renovapanel/renova/pkg/clients"
	"github.com/renovapanel/renova/pkg/faults"
	"github.com/renovapanel/renova/pkg/observability"
)

func newTestService(t *testing.T, now time.Time) (*PostgresService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	svc := NewPostgresService(db, logger, metrics)
	svc.now = func() time.Time { return now }
	return svc, mock
}

func TestGenerateReminder(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	expiry := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	clientCols := []string{
		"nome", "usuario_login", "produto_id", "tipo_preco",
		"valor_personalizado_centavos", "data_vencimento", "tentativas_cobranca",
	}

	t.Run("normal tier renders plan options and commits the transition", func(t *testing.T) {
		svc, mock := newTestService(t, now)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT nome, usuario_login`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(clientCols).
				AddRow("Maria Silva", "maria01", 5, "normal", nil, expiry, 2))
		mock.ExpectQuery(`FROM plans`).
			WithArgs(int64(5), clients.PriceTierNormal).
			WillReturnRows(sqlmock.NewRows([]string{"duracao_meses", "valor_centavos"}).
				AddRow(1, 3500).
				AddRow(3, 9000))
		mock.ExpectExec(`UPDATE clients`).
			WithArgs(now, now.Add(72*time.Hour), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := svc.GenerateReminder(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 3, result.ReminderAttempts)
		assert.Equal(t, now, result.LastReminderAt)
		assert.Equal(t, now.Add(72*time.Hour), result.NextReminderAt)
		assert.Contains(t, result.Message, "Prezado(a) Maria Silva")
		assert.Contains(t, result.Message, "15/06/2025")
		assert.Contains(t, result.Message, "1 mês(es): R$ 35.00")
		assert.Contains(t, result.Message, "3 mês(es): R$ 90.00")
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.RemindersIssuedTotal))
	})

	t.Run("custom tier never queries the plan catalog", func(t *testing.T) {
		svc, mock := newTestService(t, now)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT nome, usuario_login`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows(clientCols).
				AddRow("João", nil, 5, "personalizado", 4990, expiry, 0))
		mock.ExpectExec(`UPDATE clients`).
			WithArgs(now, now.Add(72*time.Hour), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := svc.GenerateReminder(context.Background(), 2)
		require.NoError(t, err)
		assert.Contains(t, result.Message, "49.90")
		assert.Contains(t, result.Message, "Usuário: N/A")
		assert.Equal(t, 1, result.ReminderAttempts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("attempts increase by one per call", func(t *testing.T) {
		svc, mock := newTestService(t, now)

		for i := 0; i < 3; i++ {
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT nome, usuario_login`).
				WithArgs(int64(1)).
				WillReturnRows(sqlmock.NewRows(clientCols).
					AddRow("Maria", nil, 5, "personalizado", 4990, expiry, i))
			mock.ExpectExec(`UPDATE clients`).
				WithArgs(now, now.Add(72*time.Hour), int64(1)).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()
		}

		for i := 1; i <= 3; i++ {
			result, err := svc.GenerateReminder(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, i, result.ReminderAttempts)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown client", func(t *testing.T) {
		svc, mock := newTestService(t, now)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT nome, usuario_login`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := svc.GenerateReminder(context.Background(), 99)
		require.Error(t, err)
		assert.True(t, faults.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update failure rolls back without issuing", func(t *testing.T) {
		svc, mock := newTestService(t, now)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT nome, usuario_login`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(clientCols).
				AddRow("Maria", nil, 5, "personalizado", 4990, expiry, 0))
		mock.ExpectExec(`UPDATE clients`).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := svc.GenerateReminder(context.Background(), 1)
		require.Error(t, err)
		assert.Equal(t, faults.KindStorage, faults.KindOf(err))
		assert.Equal(t, float64(0), testutil.ToFloat64(svc.metrics.RemindersIssuedTotal))
		assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.StorageErrorsTotal.WithLabelValues("generate_reminder")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown client leaves the storage error counter alone", func(t *testing.T) {
		svc, mock := newTestService(t, now)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT nome, usuario_login`).
			WithArgs(int64(7)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := svc.GenerateReminder(context.Background(), 7)
		require.Error(t, err)
		assert.Equal(t, float64(0), testutil.ToFloat64(svc.metrics.StorageErrorsTotal.WithLabelValues("generate_reminder")))
	})
}

func TestConfirmPayment(t *testing.T) {
	now := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)

	t.Run("early renewal stacks on remaining time", func(t *testing.T) {
		svc, mock := newTestService(t, now)

		expiry := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		newExpiry := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT produto_id, data_vencimento`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"produto_id", "data_vencimento"}).
				AddRow(5, expiry))
		mock.ExpectExec(`UPDATE clients`).
			WithArgs(newExpiry, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO sales`).
			WithArgs(int64(1), int64(5), int64(9000), 2).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
		mock.ExpectCommit()

		result, err := svc.ConfirmPayment(context.Background(), 1, &ConfirmPaymentRequest{
			MonthsPurchased: 2,
			AmountCentavos:  9000,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(42), result.SaleID)
		assert.Equal(t, newExpiry, result.NewExpiresAt)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.PaymentsConfirmedTotal))
		assert.Equal(t, float64(9000), testutil.ToFloat64(svc.metrics.RevenueCentavosTotal))
	})

	t.Run("lapsed account renews from today", func(t *testing.T) {
		today := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
		svc, mock := newTestService(t, today)

		expiry := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		newExpiry := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT produto_id, data_vencimento`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"produto_id", "data_vencimento"}).
				AddRow(5, expiry))
		mock.ExpectExec(`UPDATE clients`).
			WithArgs(newExpiry, int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO sales`).
			WithArgs(int64(3), int64(5), int64(3500), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(43))
		mock.ExpectCommit()

		result, err := svc.ConfirmPayment(context.Background(), 3, &ConfirmPaymentRequest{
			MonthsPurchased: 1,
			AmountCentavos:  3500,
		})
		require.NoError(t, err)
		assert.Equal(t, newExpiry, result.NewExpiresAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero months rejected", func(t *testing.T) {
		svc, _ := newTestService(t, now)

		_, err := svc.ConfirmPayment(context.Background(), 1, &ConfirmPaymentRequest{MonthsPurchased: 0})
		require.Error(t, err)
		assert.True(t, faults.IsInvalidInput(err))
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		svc, _ := newTestService(t, now)

		_, err := svc.ConfirmPayment(context.Background(), 1, &ConfirmPaymentRequest{
			MonthsPurchased: 1,
			AmountCentavos:  -100,
		})
		require.Error(t, err)
		assert.True(t, faults.IsInvalidInput(err))
	})

	t.Run("unknown client", func(t *testing.T) {
		svc, mock := newTestService(t, now)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT produto_id, data_vencimento`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := svc.ConfirmPayment(context.Background(), 99, &ConfirmPaymentRequest{
			MonthsPurchased: 1,
			AmountCentavos:  3500,
		})
		require.Error(t, err)
		assert.True(t, faults.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sale insert failure rolls the renewal back", func(t *testing.T) {
		svc, mock := newTestService(t, now)

		expiry := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		newExpiry := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT produto_id, data_vencimento`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"produto_id", "data_vencimento"}).
				AddRow(5, expiry))
		mock.ExpectExec(`UPDATE clients`).
			WithArgs(newExpiry, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO sales`).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		_, err := svc.ConfirmPayment(context.Background(), 1, &ConfirmPaymentRequest{
			MonthsPurchased: 1,
			AmountCentavos:  3500,
		})
		require.Error(t, err)
		assert.Equal(t, faults.KindStorage, faults.KindOf(err))
		assert.Equal(t, float64(0), testutil.ToFloat64(svc.metrics.PaymentsConfirmedTotal))
		assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.StorageErrorsTotal.WithLabelValues("confirm_payment")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
