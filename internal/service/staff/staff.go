package staff

import (
	"context"

	"github.com/ndanilov/staffdesk/internal/models"
	"github.com/ndanilov/staffdesk/internal/repository"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// StaffService holds business rules for staff records
type StaffService struct {
	staffRepo repository.StaffRepo
}

func NewService(staffRepo repository.StaffRepo) *StaffService {
	return &StaffService{
		staffRepo: staffRepo,
	}
}

func (s *StaffService) Create(ctx context.Context, staff models.Staff) (models.Staff, error) {
	if staff.Status == "" {
		staff.Status = models.StaffStatusActive
	}
	return s.staffRepo.Create(ctx, staff)
}

func (s *StaffService) Get(ctx context.Context, staffID string) (models.Staff, error) {
	return s.staffRepo.GetByStaffID(ctx, staffID)
}

// StaffPage is one page of a filtered staff listing
type StaffPage struct {
	Items      []models.Staff
	Total      int64
	Page       int
	Limit      int
	TotalPages int64
}

func (s *StaffService) List(ctx context.Context, filter repository.StaffFilter) (StaffPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	items, total, err := s.staffRepo.List(ctx, filter)
	if err != nil {
		return StaffPage{}, err
	}

	totalPages := (total + int64(filter.Limit) - 1) / int64(filter.Limit)
	if totalPages == 0 {
		totalPages = 1
	}

	return StaffPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *StaffService) Update(ctx context.Context, staffID string, upd repository.StaffUpdate) (models.Staff, error) {
	return s.staffRepo.Update(ctx, staffID, upd)
}

func (s *StaffService) Delete(ctx context.Context, staffID string) error {
	return s.staffRepo.Delete(ctx, staffID)
}
