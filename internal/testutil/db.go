// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/pkg/database"
)

// NewDB opens a migrated SQLite database in a temp dir.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:   "sqlite",
		FilePath: filepath.Join(t.TempDir(), "birdup.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// CreateUser inserts a user with a profile and returns it.
func CreateUser(t testing.TB, db *gorm.DB, username string) *domain.User {
	t.Helper()
	m := &domain.UserModel{Username: username, PasswordHash: "x"}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	if err := db.Create(&domain.ProfileModel{UserID: m.ID}).Error; err != nil {
		t.Fatalf("create profile %s: %v", username, err)
	}
	return m.ToDomain()
}

// CreateGroup inserts a group, optionally with a creator.
func CreateGroup(t testing.TB, db *gorm.DB, slug string, creatorID *uint) *domain.Group {
	t.Helper()
	m := &domain.GroupModel{Title: slug, Slug: slug, CreatorID: creatorID}
	if err := db.Omit("Creator").Create(m).Error; err != nil {
		t.Fatalf("create group %s: %v", slug, err)
	}
	return m.ToDomain()
}
