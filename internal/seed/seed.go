package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/schooldesk/internal/app/models"
	appRepos "github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/auth"
)

// UserCreator is the part of the user repository the seed needs
type UserCreator interface {
	Create(ctx context.Context, u *appModels.User) error
}

// LeaveTypeCreator is the part of the leave type repository the seed needs
type LeaveTypeCreator interface {
	Create(ctx context.Context, l *appModels.LeaveType) error
}

// AdminAccount describes the administrator to create
type AdminAccount struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// DefaultLeaveTypes is the catalogue a fresh school starts with
var DefaultLeaveTypes = []appModels.LeaveType{
	{Name: "Sick Leave", MaxDaysPerYear: 12, IsPaid: true},
	{Name: "Casual Leave", MaxDaysPerYear: 10, IsPaid: true},
	{Name: "Maternity Leave", MaxDaysPerYear: 98, IsPaid: true},
	{Name: "Unpaid Leave", MaxDaysPerYear: 30, IsPaid: false},
}

// CreateAdmin creates an active ADMIN account. An already registered email yields apperrors.ErrEmailAlreadyExists.
func CreateAdmin(ctx context.Context, users UserCreator, account AdminAccount) (*appModels.User, error) {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if email == "" {
		return nil, fmt.Errorf("admin email is required")
	}
	if len(account.Password) < 8 {
		return nil, fmt.Errorf("admin password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(account.Password)
	if err != nil {
		return nil, err
	}

	firstName, lastName := account.FirstName, account.LastName
	if firstName == "" {
		firstName = "School"
	}
	if lastName == "" {
		lastName = "Admin"
	}

	user := &appModels.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		RoleType:     appModels.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateDefaultData creates the configured admin and the default leave types when they don't exist yet
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, admin AdminAccount, lgr zerolog.Logger) error {
	return createDefaultData(ctx, repos.UserRepository, repos.LeaveTypeRepository, admin, lgr)
}

func createDefaultData(ctx context.Context, users UserCreator, leaveTypes LeaveTypeCreator, admin AdminAccount, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (admin, leave types)...")
	var finalErr error

	if admin.Email != "" && admin.Password != "" {
		user, err := CreateAdmin(ctx, users, admin)
		switch {
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			lgr.Debug().Str("email", admin.Email).Msg("Admin account already exists")
		case err != nil:
			lgr.Error().Err(err).Str("email", admin.Email).Msg("Error creating admin account")
			finalErr = errors.Join(finalErr, err)
		default:
			lgr.Info().Int64("userID", user.ID).Str("email", user.Email).Msg("Admin account created")
		}
	} else {
		lgr.Warn().Msg("No seed admin configured; use the admin CLI to create one")
	}

	for _, lt := range DefaultLeaveTypes {
		lt := lt
		err := leaveTypes.Create(ctx, &lt)
		if err != nil && !errors.Is(err, apperrors.ErrLeaveTypeNameTaken) {
			lgr.Error().Err(err).Str("name", lt.Name).Msg("Error creating default leave type")
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}
