package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(gormsqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Product{}, &Inventory{}, &SpecialOffer{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seeded(t *testing.T) *Repo {
	t.Helper()
	repo := NewRepo(openTestDB(t), time.Second)
	n, err := repo.Seed(context.Background(), StaticProducts(), 3)
	require.NoError(t, err)
	require.Equal(t, len(StaticProducts()), n)
	return repo
}

func TestSearch_OrAcrossTermsAndColumns(t *testing.T) {
	repo := seeded(t)

	got, err := repo.Search(context.Background(), Filter{
		Terms:   []string{"SAPPHIRE", "bracelet"},
		Columns: []string{ColumnName, ColumnCategory},
		Limit:   5,
	})
	require.NoError(t, err)

	var names []string
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"Moissanite Tennis Bracelet", "Sapphire Drop Pendant"}, names)
}

func TestSearch_RespectsLimitAndIgnoresUnknownColumns(t *testing.T) {
	repo := seeded(t)

	got, err := repo.Search(context.Background(), Filter{
		Terms:   []string{"moissanite"},
		Columns: []string{ColumnFeatures, "price; DROP TABLE products"},
		Limit:   2,
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	none, err := repo.Search(context.Background(), Filter{Terms: []string{"x"}, Columns: []string{"nope"}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProductsByID_SkipsUnknown(t *testing.T) {
	repo := seeded(t)
	ctx := context.Background()

	got, err := repo.ProductsByID(ctx, []uint64{2, 424242, 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.EqualValues(t, 1, got[0].ID)
	assert.Equal(t, StaticProducts()[0].Name, got[0].Name)
	assert.EqualValues(t, 2, got[1].ID)

	none, err := repo.ProductsByID(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInventoryAndOffer(t *testing.T) {
	repo := seeded(t)
	ctx := context.Background()

	got, err := repo.Search(ctx, Filter{Terms: []string{"emerald halo"}, Columns: []string{ColumnName}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	id := got[0].ID

	inv, err := repo.InventoryFor(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, 3, inv.Quantity)

	offer, err := repo.ActiveOfferFor(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, offer)

	require.NoError(t, repo.db.Create(&SpecialOffer{ProductID: id, Description: "old", IsActive: false}).Error)
	require.NoError(t, repo.db.Create(&SpecialOffer{ProductID: id, Description: "10% off this week", IsActive: true}).Error)

	offer, err = repo.ActiveOfferFor(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.Equal(t, "10% off this week", offer.Description)

	missing, err := repo.InventoryFor(ctx, 424242)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCounts(t *testing.T) {
	repo := seeded(t)
	ctx := context.Background()

	n, err := repo.CountByCategory(ctx, "necklaces")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	total, err := repo.CountProducts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(StaticProducts()), total)

	cats, err := repo.DistinctCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bracelets", "Earrings", "Necklaces", "Pendants", "Rings"}, cats)
}

func TestSeed_SkipsExisting(t *testing.T) {
	repo := seeded(t)

	n, err := repo.Seed(context.Background(), StaticProducts(), 3)
	require.NoError(t, err)
	assert.Zero(t, n)
}
