// Package service implements the registration workflow: it keeps the
// capacity ledger and the registration store mutually consistent across
// every submission and admin mutation.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nycd79/borough-bash/internal/model"
	"github.com/nycd79/borough-bash/internal/notify"
	"github.com/nycd79/borough-bash/internal/repository"
)

// ErrCapacityExceeded is returned when a claim-gated transition is rejected
// because the target region has no confirmed seats left.
var ErrCapacityExceeded = errors.New("region is at capacity")

// ErrValidation wraps request validation failures.
var ErrValidation = errors.New("validation failed")

// CapacityLedger is the per-region atomic seat counter. Claim and Release
// must be single atomic operations against the backing store; see
// repository.CapacityRepository for the pgx implementation.
type CapacityLedger interface {
	Claim(ctx context.Context, region model.Region) (bool, error)
	Release(ctx context.Context, region model.Region) error
	SetMax(ctx context.Context, region model.Region, newMax int) error
	Counts(ctx context.Context) ([]model.RegionCount, error)
}

// RegistrationStore is the durable registration record store. Insert must
// enforce case-insensitive email uniqueness at the storage layer.
type RegistrationStore interface {
	Insert(ctx context.Context, reg model.Registration) (*model.Registration, error)
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	GetByEmail(ctx context.Context, email string) (*model.Registration, error)
	Update(ctx context.Context, id string, patch model.UpdateRequest) (*model.Registration, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Registration, error)
	ListByRegion(ctx context.Context, region model.Region) ([]model.Registration, error)
}

// Notifier receives submission outcomes for best-effort delivery.
type Notifier interface {
	Notify(ctx context.Context, status model.Status, p notify.Payload)
}

// RegistrationService orchestrates the ledger and the store. The central
// invariant it maintains: for every region, the number of confirmed
// registrations equals the ledger's confirmed count.
type RegistrationService struct {
	ledger   CapacityLedger
	store    RegistrationStore
	notifier Notifier

	// allowedEmailDomain, when non-empty, restricts submissions to
	// addresses ending with this suffix.
	allowedEmailDomain string

	log zerolog.Logger
}

// NewRegistrationService constructs a RegistrationService. notifier may be
// nil when no webhooks are configured.
func NewRegistrationService(
	ledger CapacityLedger,
	store RegistrationStore,
	notifier Notifier,
	allowedEmailDomain string,
	log zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		ledger:             ledger,
		store:              store,
		notifier:           notifier,
		allowedEmailDomain: strings.ToLower(strings.TrimSpace(allowedEmailDomain)),
		log:                log,
	}
}

// Submit places a new registration. The region's capacity decides the
// outcome: a successful claim yields a confirmed record, a rejected claim a
// waiting-list record. When the insert fails after a successful claim, the
// claim is released before the error is returned so no seat leaks.
func (s *RegistrationService) Submit(ctx context.Context, req model.SubmitRequest) (*model.SubmitResponse, error) {
	reg, err := s.validateSubmit(req)
	if err != nil {
		return nil, err
	}

	claimed, err := s.ledger.Claim(ctx, reg.Region)
	if err != nil {
		return nil, fmt.Errorf("claim seat: %w", err)
	}
	reg.Status = model.StatusWaitingList
	if claimed {
		reg.Status = model.StatusConfirmed
	}

	inserted, err := s.store.Insert(ctx, reg)
	if err != nil {
		if claimed {
			// Compensating release: the claim without its record would leak
			// a seat forever. A failing release is logged, not retried; a
			// retry storm could double-release.
			if relErr := s.ledger.Release(ctx, reg.Region); relErr != nil {
				s.log.Error().Err(relErr).
					Str("region", string(reg.Region)).
					Msg("failed to release seat after insert failure")
			}
		}
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, repository.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, inserted.Status, notify.PayloadFor(inserted))
	}
	return &model.SubmitResponse{Status: inserted.Status, Registration: inserted}, nil
}

// Get returns a registration by id.
func (s *RegistrationService) Get(ctx context.Context, id string) (*model.Registration, error) {
	if id == "" {
		return nil, repository.ErrNotFound
	}
	return s.store.GetByID(ctx, id)
}

// List returns all registrations, newest first.
func (s *RegistrationService) List(ctx context.Context) ([]model.Registration, error) {
	return s.store.List(ctx)
}

// ListByRegion returns one region's registrations, newest first.
func (s *RegistrationService) ListByRegion(ctx context.Context, region model.Region) ([]model.Registration, error) {
	if !region.Valid() {
		return nil, fmt.Errorf("%w: unknown region %q", ErrValidation, region)
	}
	return s.store.ListByRegion(ctx, region)
}

// Update applies an admin edit. Status and region changes go through the
// ledger so the confirmed counts stay consistent:
//
//	confirmed -> waiting_list          release old region
//	waiting_list -> confirmed          claim target region, or fail
//	confirmed -> confirmed, new region claim new, then release old, or fail
//
// A claim-gated change that cannot claim fails with ErrCapacityExceeded and
// leaves the record untouched. Plain field edits never touch the ledger.
func (s *RegistrationService) Update(ctx context.Context, id string, patch model.UpdateRequest) (*model.Registration, error) {
	if id == "" {
		return nil, repository.ErrNotFound
	}
	if err := validatePatch(&patch); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: no recognized fields", ErrValidation)
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus, newStatus := current.Status, current.Status
	if patch.Status != nil {
		newStatus = *patch.Status
	}
	oldRegion, newRegion := current.Region, current.Region
	if patch.Region != nil {
		newRegion = *patch.Region
	}

	// Ledger reconciliation before the store write. Claim-gated paths abort
	// here with no state change; release-first paths accept a brief
	// under-count if the write below fails, never a double-claim.
	claimedRegion := model.Region("")
	switch {
	case oldStatus == model.StatusConfirmed && newStatus == model.StatusWaitingList:
		if err := s.ledger.Release(ctx, oldRegion); err != nil {
			s.log.Error().Err(err).
				Str("region", string(oldRegion)).
				Msg("release on demotion failed")
		}
	case oldStatus == model.StatusWaitingList && newStatus == model.StatusConfirmed:
		claimed, err := s.ledger.Claim(ctx, newRegion)
		if err != nil {
			return nil, fmt.Errorf("claim seat: %w", err)
		}
		if !claimed {
			return nil, ErrCapacityExceeded
		}
		claimedRegion = newRegion
	case oldStatus == model.StatusConfirmed && newStatus == model.StatusConfirmed && oldRegion != newRegion:
		// Claim the new region before releasing the old one: a rejected
		// claim must leave the world untouched. The two ledger writes are
		// not one transaction; a crash between them over-counts one seat
		// until reconciled, never under-counts.
		claimed, err := s.ledger.Claim(ctx, newRegion)
		if err != nil {
			return nil, fmt.Errorf("claim seat: %w", err)
		}
		if !claimed {
			return nil, ErrCapacityExceeded
		}
		claimedRegion = newRegion
		if err := s.ledger.Release(ctx, oldRegion); err != nil {
			s.log.Error().Err(err).
				Str("region", string(oldRegion)).
				Msg("release on region move failed")
		}
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		if claimedRegion != "" {
			if relErr := s.ledger.Release(ctx, claimedRegion); relErr != nil {
				s.log.Error().Err(relErr).
					Str("region", string(claimedRegion)).
					Msg("failed to release seat after update failure")
			}
		}
		return nil, err
	}
	return updated, nil
}

// ChangeStatus toggles a registration between confirmed and waiting_list.
func (s *RegistrationService) ChangeStatus(ctx context.Context, id string, status model.Status) (*model.Registration, error) {
	return s.Update(ctx, id, model.UpdateRequest{Status: &status})
}

// ChangeRegion moves a registration to another region, claiming a seat
// there first when the registration is confirmed.
func (s *RegistrationService) ChangeRegion(ctx context.Context, id string, region model.Region) (*model.Registration, error) {
	return s.Update(ctx, id, model.UpdateRequest{Region: &region})
}

// Delete removes a registration, returning its confirmed seat to the
// region first when it holds one. The delete is the operation of record: a
// failed release is logged and does not block it.
func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return repository.ErrNotFound
	}
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if current.Status == model.StatusConfirmed {
		if err := s.ledger.Release(ctx, current.Region); err != nil {
			s.log.Error().Err(err).
				Str("region", string(current.Region)).
				Str("id", id).
				Msg("release on delete failed")
		}
	}
	return s.store.Delete(ctx, id)
}

// SetCapacity adjusts a region's maximum confirmed seats. Fails with
// repository.ErrInvalidCapacity when the new maximum is below the current
// confirmed count.
func (s *RegistrationService) SetCapacity(ctx context.Context, region model.Region, maxCapacity int) error {
	if !region.Valid() {
		return fmt.Errorf("%w: unknown region %q", ErrValidation, region)
	}
	if maxCapacity < 0 {
		return fmt.Errorf("%w: max capacity must be non-negative", ErrValidation)
	}
	return s.ledger.SetMax(ctx, region, maxCapacity)
}

// Counts returns every region's confirmed/waiting/max summary.
func (s *RegistrationService) Counts(ctx context.Context) ([]model.RegionCount, error) {
	return s.ledger.Counts(ctx)
}

// Roster returns the full admin view: all registrations, the per-region
// confirmed/waiting split, and the counts table.
func (s *RegistrationService) Roster(ctx context.Context) (*model.Roster, error) {
	regs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.ledger.Counts(ctx)
	if err != nil {
		return nil, err
	}

	byRegion := make(map[model.Region]*model.RegionRoster, len(model.Regions()))
	for _, region := range model.Regions() {
		byRegion[region] = &model.RegionRoster{
			Confirmed:   []model.Registration{},
			WaitingList: []model.Registration{},
		}
	}
	for _, reg := range regs {
		bucket, ok := byRegion[reg.Region]
		if !ok {
			continue
		}
		if reg.Status == model.StatusConfirmed {
			bucket.Confirmed = append(bucket.Confirmed, reg)
		} else {
			bucket.WaitingList = append(bucket.WaitingList, reg)
		}
	}

	return &model.Roster{Registrations: regs, ByRegion: byRegion, Counts: counts}, nil
}

// validateSubmit normalizes and checks a submission, returning the record
// to insert (status still unset).
func (s *RegistrationService) validateSubmit(req model.SubmitRequest) (model.Registration, error) {
	reg := model.Registration{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Title:     strings.TrimSpace(req.Title),
		Program:   strings.TrimSpace(req.Program),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Region:    req.Region,
	}

	switch {
	case reg.FirstName == "":
		return model.Registration{}, fmt.Errorf("%w: first name is required", ErrValidation)
	case reg.LastName == "":
		return model.Registration{}, fmt.Errorf("%w: last name is required", ErrValidation)
	case reg.Title == "":
		return model.Registration{}, fmt.Errorf("%w: title is required", ErrValidation)
	case !model.ValidProgram(reg.Program):
		return model.Registration{}, fmt.Errorf("%w: please select a program", ErrValidation)
	case !reg.Region.Valid():
		return model.Registration{}, fmt.Errorf("%w: please select a borough", ErrValidation)
	case !isValidEmail(reg.Email):
		return model.Registration{}, fmt.Errorf("%w: please enter a valid email address", ErrValidation)
	}

	if s.allowedEmailDomain != "" && !strings.HasSuffix(reg.Email, s.allowedEmailDomain) {
		return model.Registration{}, fmt.Errorf(
			"%w: please use your %s email address", ErrValidation, s.allowedEmailDomain)
	}
	return reg, nil
}

func validatePatch(patch *model.UpdateRequest) error {
	if patch.Region != nil && !patch.Region.Valid() {
		return fmt.Errorf("%w: unknown region %q", ErrValidation, *patch.Region)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, *patch.Status)
	}
	if patch.Program != nil && !model.ValidProgram(strings.TrimSpace(*patch.Program)) {
		return fmt.Errorf("%w: unknown program %q", ErrValidation, *patch.Program)
	}
	if patch.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*patch.Email))
		if !isValidEmail(normalized) {
			return fmt.Errorf("%w: invalid email address", ErrValidation)
		}
		patch.Email = &normalized
	}
	return nil
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
