package model

import "time"

type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Email       string `gorm:"size:254;uniqueIndex;not null" json:"email"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `json:"description"`
	OwnerID     *uint     `gorm:"index" json:"owner_id"`
	Price       int64     `gorm:"not null;default:0" json:"price"` // minor currency units
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"` // date modified, drives notifications
}

type Lesson struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:150;not null" json:"title"`
	Description string    `json:"description"`
	VideoURL    string    `gorm:"size:255" json:"video_url"`
	CourseID    *uint     `gorm:"index" json:"course_id"`
	OwnerID     *uint     `gorm:"index" json:"owner_id"`
	Price       int64     `gorm:"not null;default:0" json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Subscriber struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:ux_subscribers_user_course,priority:1"`
	CourseID  uint `gorm:"not null;index;uniqueIndex:ux_subscribers_user_course,priority:2"`
	CreatedAt time.Time
}

// Payment is the durable proof of a purchase. Exactly one of CourseID/LessonID is set and
// the composite unique indexes allow a single row per (user, course) and per (user, lesson).
type Payment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Reference      string    `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	UserID         uint      `gorm:"not null;uniqueIndex:ux_payments_user_course,priority:1;uniqueIndex:ux_payments_user_lesson,priority:1" json:"user_id"`
	CourseID       *uint     `gorm:"uniqueIndex:ux_payments_user_course,priority:2;check:chk_payments_one_product,(course_id IS NULL) <> (lesson_id IS NULL)" json:"course_id"`
	LessonID       *uint     `gorm:"uniqueIndex:ux_payments_user_lesson,priority:2" json:"lesson_id"`
	PaidPrice      int64     `gorm:"not null" json:"paid_price"`
	Currency       string    `gorm:"size:8;not null" json:"currency"`
	PaymentMethod  string    `gorm:"size:50;not null" json:"payment_method"`
	ConfirmationID string    `gorm:"size:64;index;not null" json:"confirmation_id"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// ScheduledNotification is the one pending course-update job per course. Version grows on
// every reschedule so a worker can claim exactly the row it read.
type ScheduledNotification struct {
	ID        uint      `gorm:"primaryKey"`
	CourseID  uint      `gorm:"not null;uniqueIndex"`
	FireAt    time.Time `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
	Version   uint      `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
