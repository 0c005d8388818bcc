package sellers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
)

func setupSellersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sellers := `
CREATE TABLE IF NOT EXISTS sellers (
  id TEXT PRIMARY KEY,
  uid TEXT NOT NULL,
  email TEXT NOT NULL,
  store_name TEXT NOT NULL,
  slug TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 0,
  pix_number TEXT,
  whatsapp_number TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(sellers).Error)
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX idx_sellers_slug ON sellers (slug);`).Error)
	return db
}

func testSeller(slug string) *models.Seller {
	now := time.Now().UTC()
	pix := "pix@example.com"
	return &models.Seller{
		ID:        uuid.New(),
		UID:       "uid-" + slug,
		Email:     slug + "@example.com",
		StoreName: "Loja " + slug,
		Slug:      slug,
		PixNumber: &pix,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRepositorySellerFlow(t *testing.T) {
	repo := NewRepository(setupSellersTestDB(t))
	ctx := context.Background()

	seller := testSeller("joaninha")
	require.NoError(t, repo.Create(ctx, seller))

	found, err := repo.FindBySlug(ctx, "joaninha")
	require.NoError(t, err)
	assert.Equal(t, seller.ID, found.ID)
	assert.False(t, found.Active)
	require.NotNil(t, found.PixNumber)
	assert.Equal(t, "pix@example.com", *found.PixNumber)
	assert.Nil(t, found.WhatsAppNumber)

	byUID, err := repo.FindByUID(ctx, "uid-joaninha")
	require.NoError(t, err)
	assert.Equal(t, seller.ID, byUID.ID)

	_, err = repo.FindBySlug(ctx, "ausente")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRepositoryDuplicateSlug(t *testing.T) {
	repo := NewRepository(setupSellersTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testSeller("joaninha")))
	err := repo.Create(ctx, testSeller("joaninha"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSlugTaken), "got %v", err)
}

func TestServiceOverSQLiteRepository(t *testing.T) {
	repo := NewRepository(setupSellersTestDB(t))
	svc := newTestService(t, repo)
	ctx := context.Background()

	first := signupInput()
	_, err := svc.CreateProfile(ctx, first)
	require.NoError(t, err)

	ok, err := svc.IsSlugAvailable(ctx, "chocotone-da-joaninha")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.GetActiveBySlug(ctx, "chocotone-da-joaninha")
	require.Error(t, err, "new sellers start inactive")
}
