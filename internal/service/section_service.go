package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"trainhub/internal/models"
	"trainhub/internal/policy"
	"trainhub/internal/repository"
)

type SectionService struct {
	sectionRepo repository.SectionRepository
}

func NewSectionService(sectionRepo repository.SectionRepository) *SectionService {
	return &SectionService{sectionRepo: sectionRepo}
}

// staffOnly gates section writes. Section management is a staff concern.
func staffOnly(actor policy.Actor) error {
	if actor.IsGuest() {
		return models.NewUnauthorizedError("authentication required")
	}
	if !actor.IsStaff {
		return models.NewForbiddenError("section management requires staff privileges")
	}
	return nil
}

func validateSectionName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < 2 {
		return models.NewValidationError("Section name must be at least 2 characters")
	}
	return nil
}

func (s *SectionService) ListSections(ctx context.Context) ([]*models.Section, error) {
	return s.sectionRepo.List(ctx)
}

func (s *SectionService) GetSection(ctx context.Context, id uint) (*models.Section, error) {
	section, err := s.sectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "section")
	}
	return section, nil
}

func (s *SectionService) CreateSection(ctx context.Context, actor policy.Actor, name, description string) (*models.Section, error) {
	if err := staffOnly(actor); err != nil {
		return nil, err
	}
	if err := validateSectionName(name); err != nil {
		return nil, err
	}

	section := &models.Section{
		Name:        strings.TrimSpace(name),
		Description: description,
	}
	if err := s.sectionRepo.Create(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

// UpdateSection applies a partial update; nil fields are left untouched.
func (s *SectionService) UpdateSection(ctx context.Context, actor policy.Actor, id uint, name, description *string) (*models.Section, error) {
	if err := staffOnly(actor); err != nil {
		return nil, err
	}

	section, err := s.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		if err := validateSectionName(*name); err != nil {
			return nil, err
		}
		section.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		section.Description = *description
	}

	if err := s.sectionRepo.Update(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

// ReplaceSection applies a full replacement; name is required and an
// absent description resets to empty.
func (s *SectionService) ReplaceSection(ctx context.Context, actor policy.Actor, id uint, name, description *string) (*models.Section, error) {
	if err := staffOnly(actor); err != nil {
		return nil, err
	}

	section, err := s.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}

	if name == nil {
		return nil, models.NewIncompleteReplacementError([]string{"name"})
	}
	if err := validateSectionName(*name); err != nil {
		return nil, err
	}

	section.Name = strings.TrimSpace(*name)
	section.Description = ""
	if description != nil {
		section.Description = *description
	}

	if err := s.sectionRepo.Update(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *SectionService) DeleteSection(ctx context.Context, actor policy.Actor, id uint) error {
	if err := staffOnly(actor); err != nil {
		return err
	}

	if _, err := s.GetSection(ctx, id); err != nil {
		return err
	}

	return s.sectionRepo.Delete(ctx, id)
}
