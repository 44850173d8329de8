package model

import "strings"

type ProductKind string

const (
	ProductKindCourse ProductKind = "course"
	ProductKindLesson ProductKind = "lesson"
)

// ParseProductKind maps a URL tag onto a known kind.
func ParseProductKind(tag string) (ProductKind, bool) {
	switch ProductKind(strings.ToLower(tag)) {
	case ProductKindCourse:
		return ProductKindCourse, true
	case ProductKindLesson:
		return ProductKindLesson, true
	}
	return "", false
}

// Purchasable is a course or a lesson as seen by the payment flow.
type Purchasable interface {
	Kind() ProductKind
	ProductID() uint
	ProductPrice() int64
	ProductTitle() string
}

func (c *Course) Kind() ProductKind    { return ProductKindCourse }
func (c *Course) ProductID() uint      { return c.ID }
func (c *Course) ProductPrice() int64  { return c.Price }
func (c *Course) ProductTitle() string { return c.Title }

func (l *Lesson) Kind() ProductKind    { return ProductKindLesson }
func (l *Lesson) ProductID() uint      { return l.ID }
func (l *Lesson) ProductPrice() int64  { return l.Price }
func (l *Lesson) ProductTitle() string { return l.Title }

// NewPayment returns a payment row pointing at product through the matching column.
func NewPayment(userID uint, product Purchasable) *Payment {
	id := product.ProductID()
	p := &Payment{UserID: userID}
	switch product.Kind() {
	case ProductKindCourse:
		p.CourseID = &id
	case ProductKindLesson:
		p.LessonID = &id
	}
	return p
}
