package service

import (
	"context"
	"fmt"
	"testing"

	"payout-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreatorStore struct {
	creators map[string]*models.Creator
}

func newFakeCreatorStore() *fakeCreatorStore {
	return &fakeCreatorStore{
		creators: map[string]*models.Creator{
			aliceID: {ID: aliceID, Name: "Alice Wanjiku", RevenueShare: 0.65, Role: models.RoleCreator},
			adminID: {ID: adminID, Name: "Platform Admin", RevenueShare: 0.5, Role: models.RoleAdmin},
		},
	}
}

func (f *fakeCreatorStore) GetCreators(_ context.Context) ([]models.Creator, error) {
	out := make([]models.Creator, 0, len(f.creators))
	for _, c := range f.creators {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCreatorStore) GetCreatorByID(_ context.Context, id string) (*models.Creator, error) {
	c, ok := f.creators[id]
	if !ok {
		return nil, fmt.Errorf("creator not found: %s", id)
	}
	return c, nil
}

func (f *fakeCreatorStore) CreateCreator(_ context.Context, creator *models.Creator) error {
	f.creators[creator.ID] = creator
	return nil
}

func (f *fakeCreatorStore) UpdateCreatorShare(_ context.Context, id string, share float64) error {
	f.creators[id].RevenueShare = share
	return nil
}

func TestUpdateShare(t *testing.T) {
	f := newFakeCreatorStore()
	cs := NewCreatorService(f, nil, 0.65)

	err := cs.UpdateShare(context.Background(), adminSession, aliceID, 0.7)
	require.NoError(t, err)
	assert.Equal(t, 0.7, f.creators[aliceID].RevenueShare)
}

func TestUpdateShareEnforcesFloor(t *testing.T) {
	cs := NewCreatorService(newFakeCreatorStore(), nil, 0.65)
	ctx := context.Background()

	err := cs.UpdateShare(ctx, adminSession, aliceID, 0.49)
	assert.ErrorIs(t, err, ErrShareOutOfRange)

	err = cs.UpdateShare(ctx, adminSession, aliceID, 1.01)
	assert.ErrorIs(t, err, ErrShareOutOfRange)

	// boundary values are allowed
	assert.NoError(t, cs.UpdateShare(ctx, adminSession, aliceID, 0.5))
	assert.NoError(t, cs.UpdateShare(ctx, adminSession, aliceID, 1.0))
}

func TestUpdateShareExcludesAdmins(t *testing.T) {
	cs := NewCreatorService(newFakeCreatorStore(), nil, 0.65)

	err := cs.UpdateShare(context.Background(), adminSession, adminID, 0.8)
	assert.ErrorIs(t, err, ErrAdminShareEdit)
}

func TestUpdateShareRequiresAdminSession(t *testing.T) {
	cs := NewCreatorService(newFakeCreatorStore(), nil, 0.65)

	creatorSession := models.Session{UserID: "u2", Role: models.RoleCreator}
	err := cs.UpdateShare(context.Background(), creatorSession, aliceID, 0.7)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateCreatorDefaults(t *testing.T) {
	f := newFakeCreatorStore()
	cs := NewCreatorService(f, nil, 0.65)

	c, err := cs.Create(context.Background(), adminSession, "Chidi Okafor", "chidi@example.com", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, 0.65, c.RevenueShare)
	assert.Equal(t, models.RoleCreator, c.Role)
}

func TestCreateCreatorRejectsBadShare(t *testing.T) {
	cs := NewCreatorService(newFakeCreatorStore(), nil, 0.65)

	_, err := cs.Create(context.Background(), adminSession, "Chidi Okafor", "chidi@example.com", 0.3)
	assert.ErrorIs(t, err, ErrShareOutOfRange)
}
