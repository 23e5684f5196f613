package service

import (
	"context"
	"errors"
	"strings"

	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/finaurial/finance-tracker/internal/repository"
	"github.com/google/uuid"
)

// FeatureInput is the body of POST and PUT /api/admin/features
type FeatureInput struct {
	Name      *string `json:"name"`
	IsEnabled *bool   `json:"isEnabled"`
}

// ListFeatures returns every feature flag sorted by name
func (s *Service) ListFeatures(ctx context.Context) ([]models.FeatureFlag, error) {
	return s.repo.ListFeatureFlags(ctx)
}

// CreateFeature adds a flag; names are unique. A flag is enabled unless isEnabled says otherwise.
func (s *Service) CreateFeature(ctx context.Context, in FeatureInput) (*models.FeatureFlag, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, invalid("Please add a name")
	}
	flag := &models.FeatureFlag{Name: strings.TrimSpace(*in.Name), IsEnabled: true}
	if in.IsEnabled != nil {
		flag.IsEnabled = *in.IsEnabled
	}

	if err := s.repo.CreateFeatureFlag(ctx, flag); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("Feature already exists")
		}
		return nil, err
	}
	s.log.Infof("Feature %s created, enabled=%t", flag.Name, flag.IsEnabled)
	return flag, nil
}

// UpdateFeature renames or toggles a flag; absent fields are kept
func (s *Service) UpdateFeature(ctx context.Context, id uuid.UUID, in FeatureInput) (*models.FeatureFlag, error) {
	flag, err := s.repo.FindFeatureFlagByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Feature")
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("Please add a name")
		}
		flag.Name = name
	}
	if in.IsEnabled != nil {
		flag.IsEnabled = *in.IsEnabled
	}

	if err := s.repo.UpdateFeatureFlag(ctx, flag); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("Feature already exists")
		}
		return nil, notFound(err, "Feature")
	}
	s.log.Infof("Feature %s updated, enabled=%t", flag.Name, flag.IsEnabled)
	return flag, nil
}

// DeleteFeature removes a flag
func (s *Service) DeleteFeature(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteFeatureFlag(ctx, id); err != nil {
		return notFound(err, "Feature")
	}
	s.log.Infof("Feature %s removed", id)
	return nil
}

// SeedDefaultFeatures creates the default flags that do not exist yet
func (s *Service) SeedDefaultFeatures(ctx context.Context) error {
	for _, name := range models.DefaultFeatures {
		_, err := s.repo.FindFeatureFlagByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		err = s.repo.CreateFeatureFlag(ctx, &models.FeatureFlag{Name: name, IsEnabled: true})
		if err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		s.log.Infof("Default feature %s seeded", name)
	}
	return nil
}
