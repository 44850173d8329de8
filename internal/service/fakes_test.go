package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"learnhub/internal/client"
	"learnhub/internal/events"
	"learnhub/internal/model"
	"learnhub/internal/repository"
	"learnhub/internal/testutil"

	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fakeProcessor struct {
	mu sync.Mutex

	createErr      error
	confirmErr     error
	retrieveErr    error
	retrieveStatus client.IntentStatus
	lastErrorCode  string
	lastErrorMsg   string
	// every create waits here so concurrent attempts all pass the guard first
	barrier *sync.WaitGroup

	creates   int
	confirms  int
	retrieves int
	amounts   []int64
}

func (p *fakeProcessor) CreateIntent(ctx context.Context, amount int64, currency string, card model.CardDetails) (*client.Intent, error) {
	if p.barrier != nil {
		p.barrier.Done()
		p.barrier.Wait()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.creates++
	p.amounts = append(p.amounts, amount)

	intent := &client.Intent{
		ID:       fmt.Sprintf("tx_%d", p.creates),
		Status:   client.IntentStatusRequiresConfirmation,
		Amount:   amount,
		Currency: currency,
	}
	if p.createErr != nil {
		return intent, p.createErr
	}
	return intent, nil
}

func (p *fakeProcessor) ConfirmIntent(ctx context.Context, intentID string) (*client.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirms++

	if p.confirmErr != nil {
		return nil, p.confirmErr
	}
	return &client.Intent{ID: intentID, Status: client.IntentStatusSucceeded}, nil
}

func (p *fakeProcessor) RetrieveIntent(ctx context.Context, intentID string) (*client.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.retrieves++

	if p.retrieveErr != nil {
		return nil, p.retrieveErr
	}

	status := p.retrieveStatus
	if status == "" {
		status = client.IntentStatusSucceeded
	}
	var amount int64
	if len(p.amounts) > 0 {
		amount = p.amounts[len(p.amounts)-1]
	}
	return &client.Intent{
		ID:               intentID,
		Status:           status,
		Amount:           amount,
		MethodType:       "credit_card",
		LastErrorCode:    p.lastErrorCode,
		LastErrorMessage: p.lastErrorMsg,
	}, nil
}

func (p *fakeProcessor) calls() (int, int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.creates, p.confirms, p.retrieves
}

type sentMail struct {
	recipient string
	subject   string
	body      string
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []sentMail
	attempts map[string]int
	// failures per recipient before a send succeeds; negative fails forever
	failures map[string]int
	err      error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{
		attempts: map[string]int{},
		failures: map[string]int{},
		err:      &client.SendError{StatusCode: 503, Body: "unavailable"},
	}
}

func (m *fakeMailer) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts[recipient]++
	if left := m.failures[recipient]; left != 0 {
		if left > 0 {
			m.failures[recipient]--
		}
		return m.err
	}

	m.sent = append(m.sent, sentMail{recipient: recipient, subject: subject, body: htmlBody})
	return nil
}

func (m *fakeMailer) messages() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.PaymentSucceeded
	err    error
}

func (p *fakePublisher) PublishPaymentSucceeded(ctx context.Context, event events.PaymentSucceeded) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) published() []events.PaymentSucceeded {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.PaymentSucceeded(nil), p.events...)
}

type paymentFixture struct {
	db        *gorm.DB
	svc       PaymentService
	processor *fakeProcessor
	publisher *fakePublisher
	user      *model.User
	course    *model.Course
	lesson    *model.Lesson
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	db := testutil.NewDB(t)
	log := zaptest.NewLogger(t)
	processor := &fakeProcessor{}
	publisher := &fakePublisher{}

	locator := NewProductLocator(repository.NewCourseRepository(db), repository.NewLessonRepository(db))
	authorizer := NewCardAuthorizer(processor, "USD", time.Second, log)
	svc := NewPaymentService(locator, authorizer, repository.NewPaymentRepository(db), publisher, "USD", log)

	course := testutil.CreateCourse(t, db, "Go in Practice", 4900)
	return &paymentFixture{
		db:        db,
		svc:       svc,
		processor: processor,
		publisher: publisher,
		user:      testutil.CreateUser(t, db, "buyer@example.com"),
		course:    course,
		lesson:    testutil.CreateLesson(t, db, "Goroutines", 900, &course.ID),
	}
}

func (f *paymentFixture) paymentCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&model.Payment{}).Count(&n).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	return n
}

var clientError400 = client.SendError{StatusCode: 400, Body: "invalid recipient"}
