package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/session"
)

// maxPasswordBytes is the longest password bcrypt accepts.
const maxPasswordBytes = 72

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthService registers users, checks credentials and resolves session tokens.
type AuthService struct {
	userRepo *repository.UserRepository
	hasher   Hasher
	sessions *session.Manager
}

func NewAuthService(userRepo *repository.UserRepository, hasher Hasher, sessions *session.Manager) *AuthService {
	return &AuthService{userRepo: userRepo, hasher: hasher, sessions: sessions}
}

// Register creates a user after checking that neither username nor email is taken.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	switch {
	case username == "":
		return nil, invalid("username", "Username is required")
	case email == "":
		return nil, invalid("email", "Email is required")
	case input.Password == "":
		return nil, invalid("password", "Password is required")
	case len(input.Password) > maxPasswordBytes:
		return nil, invalid("password", "Password must be at most 72 bytes")
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return &user, nil
}

// Login returns the user when password matches. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueSession returns a session token for user.
func (s *AuthService) IssueSession(user *model.User) (string, error) {
	return s.sessions.Issue(user.ID)
}

// ResolveIdentity maps a session token to its user.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.sessions.Parse(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// SetTelegramChatID parses raw (empty clears it) and stores it for the user.
func (s *AuthService) SetTelegramChatID(ctx context.Context, userID uint, raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	var chatID *int64
	if raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed == 0 {
			return nil, invalid("telegram_chat_id", "Telegram chat id must be a number")
		}
		chatID = &parsed
	}
	if err := s.userRepo.SetTelegramChatID(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return chatID, nil
}
