package testutil

import (
	"path/filepath"
	"testing"

	"learnhub/internal/client"
	"learnhub/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated sqlite database in a temp dir. A single connection
// serializes writers the way a real server serializes conflicting inserts.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := client.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func CreateUser(t testing.TB, db *gorm.DB, email string) *model.User {
	t.Helper()

	user := &model.User{Email: email, IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func CreateCourse(t testing.TB, db *gorm.DB, title string, price int64) *model.Course {
	t.Helper()

	course := &model.Course{Title: title, Price: price}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("Failed to create course: %v", err)
	}
	return course
}

func CreateLesson(t testing.TB, db *gorm.DB, title string, price int64, courseID *uint) *model.Lesson {
	t.Helper()

	lesson := &model.Lesson{Title: title, Price: price, CourseID: courseID}
	if err := db.Create(lesson).Error; err != nil {
		t.Fatalf("Failed to create lesson: %v", err)
	}
	return lesson
}

func Subscribe(t testing.TB, db *gorm.DB, userID, courseID uint) {
	t.Helper()

	if err := db.Create(&model.Subscriber{UserID: userID, CourseID: courseID}).Error; err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
}
