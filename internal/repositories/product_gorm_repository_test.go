package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"nexora/internal/models"
	"nexora/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openSQLite opens a private in-memory database for a single test.
func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.User{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func price(v float64) *float64 { return &v }

func TestGORMProductRepository_CreateAndGetAll(t *testing.T) {
	repo := repositories.NewGORMProductRepository(openSQLite(t))
	ctx := context.Background()

	first := &models.Product{Name: "Tee", Gender: models.GenderUnisex, Price: 19.99, Image: "http://x/y.jpg"}
	second := &models.Product{Name: "Dress", Gender: models.GenderFemale, Price: 49.5, OldPrice: price(60), Image: "http://x/d.jpg"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.False(t, first.UpdatedAt.IsZero())

	products, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	// Newest first.
	assert.Equal(t, second.ID, products[0].ID)
	assert.Equal(t, first.ID, products[1].ID)
	assert.Nil(t, products[1].OldPrice)
	require.NotNil(t, products[0].OldPrice)
	assert.Equal(t, 60.0, *products[0].OldPrice)
}

func TestGORMProductRepository_GetAllEmpty(t *testing.T) {
	repo := repositories.NewGORMProductRepository(openSQLite(t))

	products, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestGORMProductRepository_GetByID(t *testing.T) {
	repo := repositories.NewGORMProductRepository(openSQLite(t))
	ctx := context.Background()

	product := &models.Product{Name: "Cap", Gender: models.GenderMale, Price: 12, Image: "http://x/c.jpg"}
	require.NoError(t, repo.Create(ctx, product))

	found, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cap", found.Name)

	_, err = repo.GetByID(ctx, product.ID+100)
	require.Error(t, err)
	assert.True(t, repositories.IsNotFound(err))
}

func TestGORMProductRepository_Delete(t *testing.T) {
	repo := repositories.NewGORMProductRepository(openSQLite(t))
	ctx := context.Background()

	keep := &models.Product{Name: "Keep", Gender: models.GenderMale, Price: 1, Image: "http://x/k.jpg"}
	drop := &models.Product{Name: "Drop", Gender: models.GenderMale, Price: 2, Image: "http://x/d.jpg"}
	require.NoError(t, repo.Create(ctx, keep))
	require.NoError(t, repo.Create(ctx, drop))

	require.NoError(t, repo.Delete(ctx, drop.ID))

	products, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, keep.ID, products[0].ID)

	// Deleting again reports not found and leaves the rest alone.
	err = repo.Delete(ctx, drop.ID)
	assert.True(t, repositories.IsNotFound(err))
	products, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

// openMockPostgres wires GORM's postgres dialect to sqlmock.
func openMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGORMProductRepository_CreateTranslatesPostgresError(t *testing.T) {
	db, mock := openMockPostgres(t)
	repo := repositories.NewGORMProductRepository(db)

	mock.ExpectQuery(`INSERT INTO "products"`).
		WillReturnError(&pgconn.PgError{
			Code:    "23502",
			Message: `null value in column "image" violates not-null constraint`,
			Detail:  "Failing row contains (7, Tee, unisex, 19.99, null, null).",
			Hint:    "Provide an image URL.",
		})

	err := repo.Create(context.Background(), &models.Product{Name: "Tee", Gender: models.GenderUnisex, Price: 19.99})
	require.Error(t, err)

	var storeErr *repositories.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "23502", storeErr.Code)
	assert.Contains(t, storeErr.Message, "not-null constraint")
	assert.Equal(t, "Failing row contains (7, Tee, unisex, 19.99, null, null).", storeErr.Details)
	assert.Equal(t, "Provide an image URL.", storeErr.Hint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGORMProductRepository_DeleteMissingRow(t *testing.T) {
	db, mock := openMockPostgres(t)
	repo := repositories.NewGORMProductRepository(db)

	mock.ExpectExec(`DELETE FROM "products"`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 42)
	assert.True(t, repositories.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGORMProductRepository_GetAllConnectionFailure(t *testing.T) {
	db, mock := openMockPostgres(t)
	repo := repositories.NewGORMProductRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "products"`).
		WillReturnError(errors.New("connection reset by peer"))

	products, err := repo.GetAll(context.Background())
	assert.Nil(t, products)

	var storeErr *repositories.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Contains(t, storeErr.Message, "connection reset by peer")
	assert.False(t, storeErr.NotFound())
	assert.NoError(t, mock.ExpectationsWereMet())
}
