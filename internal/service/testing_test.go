package service

import (
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/session"
)

type testEnv struct {
	db       *gorm.DB
	users    *repository.UserRepository
	tasks    *repository.TaskRepository
	taskSvc  *TaskService
	authSvc  *AuthService
	sessions *session.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = repository.Close(db) })

	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)
	sessions := session.NewManager("test-secret", time.Hour)
	return &testEnv{
		db:       db,
		users:    users,
		tasks:    tasks,
		taskSvc:  NewTaskService(tasks),
		authSvc:  NewAuthService(users, NewBcryptHasher(bcrypt.MinCost), sessions),
		sessions: sessions,
	}
}

func (e *testEnv) user(t *testing.T, name string) *model.User {
	t.Helper()
	user := &model.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) countTasks(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&model.Task{}).Count(&n).Error; err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	return n
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
