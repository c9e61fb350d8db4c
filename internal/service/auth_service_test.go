package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"task-manager/internal/model"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.authSvc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "s3cret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret" {
		t.Fatalf("expected password to be hashed")
	}

	logged, err := env.authSvc.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, logged.ID)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.authSvc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []RegisterInput{
		{Username: "alice", Email: "other@example.com", Password: "pw"},
		{Username: "other", Email: "alice@example.com", Password: "pw"},
	}
	for _, input := range cases {
		if _, err := env.authSvc.Register(ctx, input); !errors.Is(err, ErrUserExists) {
			t.Fatalf("register %+v: expected ErrUserExists, got %v", input, err)
		}
	}

	var users int64
	if err := env.db.Model(&model.User{}).Count(&users).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if users != 1 {
		t.Fatalf("expected a single stored user, found %d", users)
	}
}

func TestRegisterRequiresFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.authSvc.Register(context.Background(), RegisterInput{Username: "alice", Email: " "})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "email" {
		t.Fatalf("expected email validation error, got %v", err)
	}
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.authSvc.Register(ctx, RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: strings.Repeat("p", 80),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "password" {
		t.Fatalf("expected password validation error, got %v", err)
	}

	if _, err := env.authSvc.Register(ctx, RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: strings.Repeat("p", 72),
	}); err != nil {
		t.Fatalf("expected a 72-byte password to be accepted, got %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.authSvc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPassword := env.authSvc.Login(ctx, "alice", "nope")
	_, unknownUser := env.authSvc.Login(ctx, "mallory", "pw")
	if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(unknownUser, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", wrongPassword, unknownUser)
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Fatalf("expected identical messages, got %q and %q", wrongPassword, unknownUser)
	}
}

func TestResolveIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.authSvc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := env.authSvc.IssueSession(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	resolved, err := env.authSvc.ResolveIdentity(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, resolved.ID)
	}

	if _, err := env.authSvc.ResolveIdentity(ctx, token+"x"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected tampered token to be rejected, got %v", err)
	}

	orphan, err := env.sessions.Issue(user.ID + 100)
	if err != nil {
		t.Fatalf("issue orphan: %v", err)
	}
	if _, err := env.authSvc.ResolveIdentity(ctx, orphan); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected token for a missing user to be rejected, got %v", err)
	}
}

func TestSetTelegramChatID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.user(t, "alice")

	chatID, err := env.authSvc.SetTelegramChatID(ctx, user.ID, " 12345 ")
	if err != nil {
		t.Fatalf("set chat id: %v", err)
	}
	if chatID == nil || *chatID != 12345 {
		t.Fatalf("expected 12345, got %v", chatID)
	}

	if _, err := env.authSvc.SetTelegramChatID(ctx, user.ID, "abc"); err == nil {
		t.Fatalf("expected invalid chat id to be rejected")
	}

	if _, err := env.authSvc.SetTelegramChatID(ctx, user.ID, ""); err != nil {
		t.Fatalf("clear chat id: %v", err)
	}
	stored, err := env.users.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.TelegramChatID != nil {
		t.Fatalf("expected chat id to be cleared, got %d", *stored.TelegramChatID)
	}
}
