package service

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/custody/internal/clock"
	"github.com/emrgen/custody/internal/model"
	"github.com/emrgen/custody/internal/store"
	"github.com/sirupsen/logrus"
)

// DefaultReliabilityScore is the baseline a freshly registered backup
// location starts from.
const DefaultReliabilityScore = 50

// NewLocationService creates a new LocationService.
func NewLocationService(store store.Store, clock clock.Clock, governance []string) *LocationService {
	return &LocationService{
		store:      store,
		clock:      clock,
		governance: mapset.NewSet(governance...),
	}
}

// LocationService is the directory of backup sites. It mirrors the agent
// directory: register once, status-transition, never delete.
type LocationService struct {
	store      store.Store
	clock      clock.Clock
	governance mapset.Set[string]
}

type RegisterLocationRequest struct {
	Caller           string
	LocationID       string
	Name             string
	Description      string
	LocationType     string
	GeographicRegion string
}

// RegisterLocation registers a new backup location operated by the caller.
func (l *LocationService) RegisterLocation(ctx context.Context, req *RegisterLocationRequest) (*model.BackupLocation, error) {
	if req.LocationID == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: location id and name are required", ErrInvalidParameter)
	}

	location := &model.BackupLocation{
		LocationID:       req.LocationID,
		Name:             req.Name,
		Description:      req.Description,
		LocationType:     req.LocationType,
		GeographicRegion: req.GeographicRegion,
		Operator:         req.Caller,
		Status:           model.LocationStatusActive,
		ReliabilityScore: DefaultReliabilityScore,
		RegisteredAt:     l.clock.Now(),
	}

	err := l.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetLocation(ctx, req.LocationID); err == nil {
			return fmt.Errorf("location %q: %w", req.LocationID, ErrAlreadyExists)
		} else if !isMissing(err) {
			return err
		}

		return tx.CreateLocation(ctx, location)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("registered backup location %s (%s)", location.LocationID, location.Name)
	return location, nil
}

type UpdateLocationStatusRequest struct {
	Caller     string
	LocationID string
	Status     model.LocationStatus
}

// UpdateLocationStatus transitions a location to a new status. Callable by
// governance or by the location's operator.
func (l *LocationService) UpdateLocationStatus(ctx context.Context, req *UpdateLocationStatusRequest) (*model.BackupLocation, error) {
	switch req.Status {
	case model.LocationStatusActive, model.LocationStatusInactive, model.LocationStatusDecommissioned:
	default:
		return nil, fmt.Errorf("%w: unknown location status %q", ErrInvalidParameter, req.Status)
	}

	var location *model.BackupLocation
	err := l.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		location, err = tx.GetLocation(ctx, req.LocationID)
		if err != nil {
			return notFound(err, "location", req.LocationID)
		}

		if !l.governance.Contains(req.Caller) && location.Operator != req.Caller {
			return fmt.Errorf("caller %q may not administer location %q: %w", req.Caller, req.LocationID, ErrUnauthorized)
		}

		location.Status = req.Status
		return tx.UpdateLocation(ctx, location)
	})
	if err != nil {
		return nil, err
	}

	return location, nil
}

type UpdateReliabilityScoreRequest struct {
	Caller     string
	LocationID string
	Delta      int
}

// UpdateReliabilityScore adjusts a location's reliability score by delta,
// clamped to [0, 100]. Governance only.
func (l *LocationService) UpdateReliabilityScore(ctx context.Context, req *UpdateReliabilityScoreRequest) (*model.BackupLocation, error) {
	if !l.governance.Contains(req.Caller) {
		return nil, fmt.Errorf("caller %q is not a governance principal: %w", req.Caller, ErrUnauthorized)
	}

	var location *model.BackupLocation
	err := l.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		location, err = tx.GetLocation(ctx, req.LocationID)
		if err != nil {
			return notFound(err, "location", req.LocationID)
		}

		location.ReliabilityScore = clampScore(location.ReliabilityScore + req.Delta)
		return tx.UpdateLocation(ctx, location)
	})
	if err != nil {
		return nil, err
	}

	return location, nil
}

// GetBackupLocation retrieves a location by ID.
func (l *LocationService) GetBackupLocation(ctx context.Context, locationID string) (*model.BackupLocation, error) {
	location, err := l.store.GetLocation(ctx, locationID)
	if err != nil {
		return nil, notFound(err, "location", locationID)
	}
	return location, nil
}
