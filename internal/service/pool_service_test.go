package service

import (
	"context"
	"testing"

	"payout-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoolStore struct {
	pools map[string]*models.SVODPool
}

func (f *fakePoolStore) UpsertSVODPool(_ context.Context, pool *models.SVODPool) error {
	if f.pools == nil {
		f.pools = make(map[string]*models.SVODPool)
	}
	cp := *pool
	f.pools[pool.ReportMonth] = &cp
	return nil
}

func (f *fakePoolStore) GetSVODPool(_ context.Context, month string) (*models.SVODPool, error) {
	return f.pools[month], nil
}

var adminSession = models.Session{UserID: "u1", Role: models.RoleAdmin}

func TestSavePool(t *testing.T) {
	f := &fakePoolStore{}
	ps := NewPoolService(f, nil)

	pool, err := ps.SavePool(context.Background(), adminSession, month, 6400000, 128000)
	require.NoError(t, err)
	assert.Equal(t, 6400000.0, pool.TotalPool)
	assert.Equal(t, int64(128000), pool.PlatformTotalStreams)

	// saving again for the same month overwrites the single row
	_, err = ps.SavePool(context.Background(), adminSession, month, 7000000, 130000)
	require.NoError(t, err)
	assert.Len(t, f.pools, 1)
	assert.Equal(t, 7000000.0, f.pools[month].TotalPool)
}

func TestSavePoolValidation(t *testing.T) {
	ps := NewPoolService(&fakePoolStore{}, nil)
	ctx := context.Background()

	_, err := ps.SavePool(ctx, adminSession, month, 0, 128000)
	assert.ErrorIs(t, err, ErrInvalidPool)

	_, err = ps.SavePool(ctx, adminSession, month, -50, 128000)
	assert.ErrorIs(t, err, ErrInvalidPool)

	_, err = ps.SavePool(ctx, adminSession, month, 6400000, 0)
	assert.ErrorIs(t, err, ErrInvalidStreams)

	_, err = ps.SavePool(ctx, adminSession, "2024-13", 6400000, 128000)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestSavePoolRequiresAdmin(t *testing.T) {
	ps := NewPoolService(&fakePoolStore{}, nil)

	creatorSession := models.Session{UserID: "u2", Role: models.RoleCreator}
	_, err := ps.SavePool(context.Background(), creatorSession, month, 6400000, 128000)
	assert.ErrorIs(t, err, ErrForbidden)
}
