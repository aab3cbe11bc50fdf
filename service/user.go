package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"menufic/apperr"
	"menufic/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func (s *Service) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("Invalid email address")
	}
	if len(password) < 8 {
		return nil, apperr.Validation("Password must be at least 8 characters")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, apperr.Internal("Failed to register", err)
	}
	if existing > 0 {
		return nil, apperr.Conflict("Email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("Failed to register", err)
	}
	user := model.User{Email: email, Name: name, Password: string(hash)}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, apperr.Internal("Failed to register", err)
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return &user, nil
}

// Authenticate returns the user when the password matches. Unknown emails
// and wrong passwords produce the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to log in", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	return &user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch user", err)
	}
	return &user, nil
}
