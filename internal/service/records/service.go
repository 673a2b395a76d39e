package records

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/apperrors"
	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/domain/normalize"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

// Service groups the fleet and HR resources.
type Service struct {
	Vehicles   *Resource[models.Vehicle, *models.Vehicle]
	Insurance  *Resource[models.Insurance, *models.Insurance]
	RoadWorth  *Resource[models.RoadWorth, *models.RoadWorth]
	DriverLogs *Resource[models.VehicleDriverLog, *models.VehicleDriverLog]
	Employees  *Resource[models.Employee, *models.Employee]

	store repository.Store
	now   func() time.Time
}

func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{store: store, now: time.Now}
	s.Vehicles = newResource[models.Vehicle]("vehicle", store.Vehicles(), normalize.Vehicle, s.validateVehicle, logger.Named("vehicles"))
	s.Insurance = newResource[models.Insurance]("insurance", store.Insurance(), normalize.Insurance, s.validateInsurance, logger.Named("insurance"))
	s.RoadWorth = newResource[models.RoadWorth]("road worth certificate", store.RoadWorth(), normalize.RoadWorth, s.validateRoadWorth, logger.Named("road_worth"))
	s.DriverLogs = newResource[models.VehicleDriverLog]("vehicle driver log", store.DriverLogs(), normalize.DriverLog, s.validateDriverLog, logger.Named("driver_logs"))
	s.Employees = newResource[models.Employee]("employee", store.Employees(), normalize.Employee, s.validateEmployee, logger.Named("employees"))
	return s
}

func (s *Service) validateVehicle(_ context.Context, v *models.Vehicle) error {
	maxYear := s.now().Year() + 1
	switch {
	case v.RegistrationNumber == "":
		return apperrors.Validation("registrationNumber is required")
	case v.Make == "" || v.Model == "":
		return apperrors.Validation("make and model are required")
	case v.Year != 0 && (v.Year < 1900 || v.Year > maxYear):
		return apperrors.Validation("year must be between 1900 and %d", maxYear)
	case !v.Status.Valid():
		return apperrors.Validation("invalid status %q", v.Status)
	}
	return nil
}

func (s *Service) validateInsurance(ctx context.Context, v *models.Insurance) error {
	switch {
	case v.Provider == "" || v.PolicyNumber == "":
		return apperrors.Validation("provider and policyNumber are required")
	case v.StartDate.IsZero() || v.EndDate.IsZero():
		return apperrors.Validation("startDate and endDate are required")
	case !v.EndDate.After(v.StartDate):
		return apperrors.Validation("endDate must be after startDate")
	case v.Premium < 0:
		return apperrors.Validation("premium cannot be negative")
	}
	return s.vehicleExists(ctx, v.Vehicle)
}

func (s *Service) validateRoadWorth(ctx context.Context, v *models.RoadWorth) error {
	switch {
	case v.CertificateNumber == "":
		return apperrors.Validation("certificateNumber is required")
	case v.IssueDate.IsZero() || v.ExpiryDate.IsZero():
		return apperrors.Validation("issueDate and expiryDate are required")
	case !v.ExpiryDate.After(v.IssueDate):
		return apperrors.Validation("expiryDate must be after issueDate")
	}
	return s.vehicleExists(ctx, v.Vehicle)
}

func (s *Service) validateDriverLog(ctx context.Context, v *models.VehicleDriverLog) error {
	switch {
	case v.CheckOut.IsZero():
		return apperrors.Validation("checkOut is required")
	case v.CheckIn != nil && v.CheckIn.Before(v.CheckOut):
		return apperrors.Validation("checkIn cannot be before checkOut")
	case v.StartMileage < 0:
		return apperrors.Validation("startMileage cannot be negative")
	case v.EndMileage != 0 && v.EndMileage < v.StartMileage:
		return apperrors.Validation("endMileage cannot be less than startMileage")
	}
	if err := s.vehicleExists(ctx, v.Vehicle); err != nil {
		return err
	}
	if v.Driver.IsZero() {
		return apperrors.Validation("driver is required")
	}
	if _, err := s.store.Employees().Get(ctx, v.Driver); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("driver not found")
		}
		return fmt.Errorf("load driver: %w", err)
	}
	return nil
}

func (s *Service) validateEmployee(_ context.Context, v *models.Employee) error {
	switch {
	case v.EmployeeNumber == "":
		return apperrors.Validation("employeeNumber is required")
	case v.FirstName == "" || v.LastName == "":
		return apperrors.Validation("firstName and lastName are required")
	case v.Email == "":
		return apperrors.Validation("email is required")
	case !v.Status.Valid():
		return apperrors.Validation("invalid status %q", v.Status)
	}
	if _, err := mail.ParseAddress(v.Email); err != nil {
		return apperrors.Validation("invalid email %q", v.Email)
	}
	return nil
}

func (s *Service) vehicleExists(ctx context.Context, id primitive.ObjectID) error {
	if id.IsZero() {
		return apperrors.Validation("vehicle is required")
	}
	if _, err := s.store.Vehicles().Get(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("vehicle not found")
		}
		return fmt.Errorf("load vehicle: %w", err)
	}
	return nil
}
