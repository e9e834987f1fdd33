package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/auth"
	"github.com/yigit/schooldesk/internal/pkg/email"
)

// temporaryPasswordLength is the length of passwords generated for admin-created accounts
const temporaryPasswordLength = 12

// newAccount prepares a user with a generated password for an admin-created person.
// It returns the plain password so it can be mailed once.
func newAccount(ctx context.Context, users UserStore, p dto.PersonRequest, role models.RoleType) (*models.User, string, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(p.Email))
	taken, err := users.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, "", fmt.Errorf("error checking if email exists: %w", err)
	}
	if taken {
		return nil, "", apperrors.ErrEmailAlreadyExists
	}

	password, err := auth.GenerateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return nil, "", fmt.Errorf("error generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("error hashing password: %w", err)
	}

	var phone *string
	if p.Phone != nil {
		phone = stringPtrOrNil(strings.TrimSpace(*p.Phone))
	}
	return &models.User{
		Email:        emailAddr,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(p.FirstName),
		LastName:     strings.TrimSpace(p.LastName),
		Phone:        phone,
		RoleType:     role,
		IsActive:     true,
	}, password, nil
}

// sendWelcome mails the generated credentials in the background
func sendWelcome(ctx context.Context, tasks *TaskRunner, mailer email.EmailService, u *models.User, password string) {
	to := email.Recipient{Name: u.FullName(), Email: u.Email}
	role := string(u.RoleType)
	tasks.Go(ctx, "email:welcome", func(ctx context.Context) error {
		return mailer.SendWelcomeCredentials(ctx, to, role, password)
	})
}
