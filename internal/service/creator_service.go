package service

import (
	"context"
	"fmt"
	"time"

	"payout-service/internal/models"
	"payout-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MinRevenueShare is the floor on a creator's cut of gross revenue.
// Enforced here, at the entity boundary; the arithmetic layer carries no
// floor of its own.
const MinRevenueShare = 0.5

// CreatorStore is the slice of the data layer roster management needs
type CreatorStore interface {
	GetCreators(ctx context.Context) ([]models.Creator, error)
	GetCreatorByID(ctx context.Context, id string) (*models.Creator, error)
	CreateCreator(ctx context.Context, creator *models.Creator) error
	UpdateCreatorShare(ctx context.Context, id string, share float64) error
}

// RosterNotifier announces roster and share changes
type RosterNotifier interface {
	PublishCreatorsChanged(ctx context.Context, event *models.CreatorsChangedEvent) error
}

// CreatorService manages the creator roster and revenue shares
type CreatorService struct {
	store        CreatorStore
	notifier     RosterNotifier
	defaultShare float64
	logger       *zap.Logger
}

// NewCreatorService creates a new creator service
func NewCreatorService(store CreatorStore, notifier RosterNotifier, defaultShare float64) *CreatorService {
	return &CreatorService{
		store:        store,
		notifier:     notifier,
		defaultShare: defaultShare,
		logger:       util.GetLogger(),
	}
}

// List returns every creator profile ordered by name
func (cs *CreatorService) List(ctx context.Context) ([]models.Creator, error) {
	return cs.store.GetCreators(ctx)
}

// Get returns one creator profile
func (cs *CreatorService) Get(ctx context.Context, id string) (*models.Creator, error) {
	return cs.store.GetCreatorByID(ctx, id)
}

// Create adds a creator to the roster with the default revenue share
// unless one is given. Admin-only.
func (cs *CreatorService) Create(ctx context.Context, session models.Session, name, email string, share float64) (*models.Creator, error) {
	ctx, span := util.StartSpan(ctx, "CreatorService.Create")
	defer span.End()

	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required")
	}
	if share == 0 {
		share = cs.defaultShare
	}
	if share < MinRevenueShare || share > 1 {
		return nil, fmt.Errorf("%w: got %.2f", ErrShareOutOfRange, share)
	}

	creator := &models.Creator{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		RevenueShare: share,
		Role:         models.RoleCreator,
	}
	if err := cs.store.CreateCreator(ctx, creator); err != nil {
		return nil, fmt.Errorf("failed to create creator %s: %w", name, err)
	}

	cs.logger.Info("Creator added",
		zap.String("creator_id", creator.ID),
		zap.Float64("revenue_share", share))

	cs.notifyChange(ctx, creator.ID, "created")
	return creator, nil
}

// UpdateShare changes a creator's revenue share within [0.5, 1.0].
// Admin-only, and admin accounts themselves are not editable.
func (cs *CreatorService) UpdateShare(ctx context.Context, session models.Session, id string, share float64) error {
	ctx, span := util.StartSpan(ctx, "CreatorService.UpdateShare")
	defer span.End()

	if !session.IsAdmin() {
		return ErrForbidden
	}
	if share < MinRevenueShare || share > 1 {
		return fmt.Errorf("%w: got %.2f", ErrShareOutOfRange, share)
	}

	creator, err := cs.store.GetCreatorByID(ctx, id)
	if err != nil {
		return err
	}
	if creator.Role == models.RoleAdmin {
		return ErrAdminShareEdit
	}

	if err := cs.store.UpdateCreatorShare(ctx, id, share); err != nil {
		return fmt.Errorf("failed to update share for creator %s (%s): %w", creator.Name, id, err)
	}

	cs.logger.Info("Revenue share updated",
		zap.String("creator_id", id),
		zap.Float64("revenue_share", share))

	cs.notifyChange(ctx, id, "share_updated")
	return nil
}

func (cs *CreatorService) notifyChange(ctx context.Context, creatorID, change string) {
	if cs.notifier == nil {
		return
	}
	event := &models.CreatorsChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCreatorsChanged,
			Timestamp: time.Now(),
		},
		CreatorID: creatorID,
		Change:    change,
	}
	if err := cs.notifier.PublishCreatorsChanged(ctx, event); err != nil {
		cs.logger.Error("Failed to publish CreatorsChanged event", zap.Error(err))
	}
}
