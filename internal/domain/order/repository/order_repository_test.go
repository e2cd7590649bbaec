package repository

import (
	"context"
	"testing"
	"time"

	"learnhub/internal/domain/order/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestUpdateStatus(t *testing.T) {
	from := []model.Status{model.StatusPending, model.StatusAwaitingConfirmation}

	t.Run("matched", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE "orders" SET .* WHERE id = \$\d+ AND status IN \(\$\d+,\$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := NewOrderRepository(db).UpdateStatus(context.Background(), "o1", from,
			map[string]interface{}{"status": model.StatusPaid})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status already changed", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE "orders" SET .* WHERE id = \$\d+ AND status IN`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := NewOrderRepository(db).UpdateStatus(context.Background(), "o1", from,
			map[string]interface{}{"status": model.StatusPaid})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetByIDForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 .*FOR UPDATE`).
		WithArgs("o1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_no", "user_id", "status"}).
			AddRow("o1", "LH20260520093000ABC123", "u1", "pending"))
	mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE order_id = \$1 ORDER BY created_at ASC`).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_type", "product_id"}).
			AddRow("i1", "o1", "course", "c1"))

	order, err := NewOrderRepository(db).GetByIDForUpdate(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "c1", order.Items[0].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDForUpdate_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewOrderRepository(db).GetByIDForUpdate(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListExpiredPending(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT "id" FROM "orders" WHERE status = \$1 AND expired_at <= \$2 ORDER BY expired_at ASC LIMIT \$3`).
		WithArgs("pending", now, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("o1").AddRow("o2"))

	ids, err := NewOrderRepository(db).ListExpiredPending(context.Background(), now, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"o1", "o2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSumPaid(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_amount\), 0\) FROM "orders" WHERE status = \$1`).
		WithArgs("paid").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("348.00"))

	total, err := NewOrderRepository(db).SumPaid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "348.00", total.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
