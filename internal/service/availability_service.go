package service

import (
	"context"
	"time"

	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AvailabilityService answers calendar questions from the configured holiday
// list and the staff directory.
type AvailabilityService struct {
	db       *gorm.DB
	log      *logrus.Logger
	userRepo repository.UserRepository
	holidays map[string]struct{}
}

// NewAvailabilityService ignores holiday entries that are not YYYY-MM-DD
func NewAvailabilityService(db *gorm.DB, log *logrus.Logger, userRepo repository.UserRepository, holidays []string) *AvailabilityService {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		d, err := entity.ParseDate(h)
		if err != nil {
			log.Warnf("Ignoring invalid holiday %q", h)
			continue
		}
		set[d.Format(entity.DateLayout)] = struct{}{}
	}
	return &AvailabilityService{
		db:       db,
		log:      log,
		userRepo: userRepo,
		holidays: set,
	}
}

func (s *AvailabilityService) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	_, ok := s.holidays[date.Format(entity.DateLayout)]
	return ok, nil
}

// IsStaffAvailable checks the user is an active field staff member and date is a working day
func (s *AvailabilityService) IsStaffAvailable(ctx context.Context, staffID uuid.UUID, date time.Time) (bool, error) {
	user, err := s.userRepo.FindByID(s.db.WithContext(ctx), staffID)
	if err != nil {
		s.log.Warnf("Failed to find staff %s: %+v", staffID, err)
		return false, err
	}
	if user == nil || !user.IsActive || user.Role != entity.RoleStaff {
		return false, nil
	}
	if IsWeekend(date) {
		return false, nil
	}
	holiday, _ := s.IsHoliday(ctx, date)
	return !holiday, nil
}

// ListActiveStaff returns field staff that can be assigned to site visits
func (s *AvailabilityService) ListActiveStaff(ctx context.Context) ([]entity.User, error) {
	return s.userRepo.FindActiveByRole(s.db.WithContext(ctx), entity.RoleStaff)
}

func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
