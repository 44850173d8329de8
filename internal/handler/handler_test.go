package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"learnhub/internal/client"
	"learnhub/internal/events"
	"learnhub/internal/middleware"
	"learnhub/internal/model"
	"learnhub/internal/repository"
	"learnhub/internal/service"
	"learnhub/internal/testutil"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type stubProcessor struct {
	createErr error
	status    client.IntentStatus
	calls     int
}

func (p *stubProcessor) CreateIntent(ctx context.Context, amount int64, currency string, card model.CardDetails) (*client.Intent, error) {
	p.calls++
	intent := &client.Intent{ID: "tx_" + strconv.Itoa(p.calls), Status: client.IntentStatusRequiresConfirmation, Amount: amount}
	return intent, p.createErr
}

func (p *stubProcessor) ConfirmIntent(ctx context.Context, intentID string) (*client.Intent, error) {
	return &client.Intent{ID: intentID, Status: p.status}, nil
}

func (p *stubProcessor) RetrieveIntent(ctx context.Context, intentID string) (*client.Intent, error) {
	intent := &client.Intent{ID: intentID, Status: p.status, Amount: 4900, MethodType: "credit_card"}
	if p.status == client.IntentStatusFailed {
		intent.LastErrorCode = "2001"
		intent.LastErrorMessage = "Insufficient Funds"
	}
	return intent, nil
}

type testEnv struct {
	e         *echo.Echo
	db        *gorm.DB
	processor *stubProcessor
	payments  *PaymentHandler
	courses   *CourseHandler
	lessons   *LessonHandler
	users     *UserHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	log := zaptest.NewLogger(t)
	processor := &stubProcessor{status: client.IntentStatusSucceeded}

	courseRepo := repository.NewCourseRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	scheduler := service.NewNotificationScheduler(repository.NewNotificationRepository(db), 4*time.Hour, 30*time.Second, log)

	paymentService := service.NewPaymentService(
		service.NewProductLocator(courseRepo, lessonRepo),
		service.NewCardAuthorizer(processor, "USD", time.Second, log),
		paymentRepo,
		events.NoopPublisher{},
		"USD",
		log,
	)

	return &testEnv{
		e:         echo.New(),
		db:        db,
		processor: processor,
		payments:  NewPaymentHandler(paymentService),
		courses: NewCourseHandler(
			service.NewCourseService(courseRepo, scheduler, log),
			service.NewSubscriberService(courseRepo, repository.NewSubscriberRepository(db)),
		),
		lessons: NewLessonHandler(service.NewLessonService(lessonRepo, courseRepo, paymentRepo, scheduler, log)),
		users:   NewUserHandler(service.NewUserService(repository.NewUserRepository(db))),
	}
}

type call struct {
	method string
	target string
	body   string
	userID uint
	params map[string]string
}

func (env *testEnv) do(h echo.HandlerFunc, cl call) *httptest.ResponseRecorder {
	var req *http.Request
	if cl.body != "" {
		req = httptest.NewRequest(cl.method, cl.target, strings.NewReader(cl.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(cl.method, cl.target, nil)
	}
	rec := httptest.NewRecorder()

	c := env.e.NewContext(req, rec)
	if len(cl.params) > 0 {
		var names, values []string
		for name, value := range cl.params {
			names = append(names, name)
			values = append(values, value)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	c.Set(middleware.UserIDKey, cl.userID)

	if err := h(c); err != nil {
		env.e.HTTPErrorHandler(err, c)
	}
	return rec
}

func cardBody(number string) string {
	year := strconv.Itoa(time.Now().Year() + 3)
	return `{"payment_method":"card","card_number":"` + number + `","expiry_month":"12","expiry_year":"` + year + `","cvc":"123"}`
}

func TestPaymentHandler_Pay(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "buyer@example.com")
	course := testutil.CreateCourse(t, env.db, "Go", 4900)

	pay := call{
		method: http.MethodPost,
		target: "/api/payments/course/" + strconv.Itoa(int(course.ID)),
		body:   cardBody("4111111111111111"),
		userID: user.ID,
		params: map[string]string{"kind": "course", "id": strconv.Itoa(int(course.ID))},
	}

	rec := env.do(env.payments.Pay, pay)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "success" || resp["amount"] != "49.00" || resp["confirmation_id"] != "tx_1" {
		t.Errorf("Unexpected response %v", resp)
	}

	rec = env.do(env.payments.Pay, pay)
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409 on repeat, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPaymentHandler_PayErrors(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "buyer@example.com")
	course := testutil.CreateCourse(t, env.db, "Go", 4900)
	id := strconv.Itoa(int(course.ID))

	tests := []struct {
		name   string
		kind   string
		id     string
		body   string
		setup  func()
		status int
		expect string
	}{
		{"unknown kind", "bundle", id, cardBody("4111111111111111"), nil, http.StatusNotFound, ""},
		{"missing product", "course", "999", cardBody("4111111111111111"), nil, http.StatusNotFound, ""},
		{"bad id", "course", "abc", cardBody("4111111111111111"), nil, http.StatusNotFound, ""},
		{"luhn failure", "course", id, cardBody("4111111111111112"), nil, http.StatusBadRequest, `"card_number"`},
		{"declined", "course", id, cardBody("4111111111111111"), func() { env.processor.status = client.IntentStatusFailed }, http.StatusPaymentRequired, `"code":"2001"`},
		{"transport", "course", id, cardBody("4111111111111111"), func() {
			env.processor.status = client.IntentStatusSucceeded
			env.processor.createErr = context.DeadlineExceeded
		}, http.StatusBadRequest, `"transport_error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			rec := env.do(env.payments.Pay, call{
				method: http.MethodPost,
				target: "/api/payments/" + tt.kind + "/" + tt.id,
				body:   tt.body,
				userID: user.ID,
				params: map[string]string{"kind": tt.kind, "id": tt.id},
			})
			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.expect != "" && !strings.Contains(rec.Body.String(), tt.expect) {
				t.Errorf("Expected body to contain %s, got %s", tt.expect, rec.Body.String())
			}
		})
	}

	var n int64
	env.db.Model(&model.Payment{}).Count(&n)
	if n != 0 {
		t.Errorf("Expected no payments, got %d", n)
	}
}

func TestPaymentHandler_List(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "buyer@example.com")
	course := testutil.CreateCourse(t, env.db, "Go", 4900)
	lesson := testutil.CreateLesson(t, env.db, "Intro", 900, nil)

	for kind, id := range map[string]uint{"course": course.ID, "lesson": lesson.ID} {
		rec := env.do(env.payments.Pay, call{
			method: http.MethodPost,
			body:   cardBody("4111111111111111"),
			target: "/api/payments",
			userID: user.ID,
			params: map[string]string{"kind": kind, "id": strconv.Itoa(int(id))},
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("Pay %s: %d %s", kind, rec.Code, rec.Body.String())
		}
	}

	rec := env.do(env.payments.List, call{method: http.MethodGet, target: "/api/payments?lesson=" + strconv.Itoa(int(lesson.ID)), userID: user.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var items []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 lesson payment, got %v", items)
	}

	rec = env.do(env.payments.List, call{method: http.MethodGet, target: "/api/payments?ordering=price", userID: user.ID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for bad ordering, got %d", rec.Code)
	}

	other := testutil.CreateUser(t, env.db, "other@example.com")
	rec = env.do(env.payments.List, call{method: http.MethodGet, target: "/api/payments", userID: other.ID})
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("Expected no payments for another user, got %s", rec.Body.String())
	}
}

func TestCourseHandler_Subscribe(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "a@example.com")
	course := testutil.CreateCourse(t, env.db, "Go", 0)
	params := map[string]string{"id": strconv.Itoa(int(course.ID))}

	rec := env.do(env.courses.Subscribe, call{method: http.MethodPost, target: "/", userID: user.ID, params: params})
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), "Subscribed successfully") {
		t.Fatalf("Expected 201 subscribe, got %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(env.courses.Subscribe, call{method: http.MethodPost, target: "/", userID: user.ID, params: params})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Unsubscribed successfully") {
		t.Fatalf("Expected 200 unsubscribe, got %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(env.courses.Subscribe, call{method: http.MethodPost, target: "/", userID: user.ID, params: map[string]string{"id": "999"}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

func TestCourseHandler_UpdateSchedulesNotification(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "a@example.com")
	course := testutil.CreateCourse(t, env.db, "Go", 0)

	rec := env.do(env.courses.Update, call{
		method: http.MethodPatch,
		target: "/",
		body:   `{"title":"Go, updated"}`,
		userID: user.ID,
		params: map[string]string{"id": strconv.Itoa(int(course.ID))},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", rec.Code, rec.Body.String())
	}

	var jobs int64
	env.db.Model(&model.ScheduledNotification{}).Where("course_id = ?", course.ID).Count(&jobs)
	if jobs != 1 {
		t.Errorf("Expected one scheduled notification, got %d", jobs)
	}
}

func TestLessonHandler_GetIsGated(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "a@example.com")
	course := testutil.CreateCourse(t, env.db, "Go", 4900)
	lesson := testutil.CreateLesson(t, env.db, "Intro", 900, &course.ID)
	params := map[string]string{"id": strconv.Itoa(int(lesson.ID))}

	rec := env.do(env.lessons.Get, call{method: http.MethodGet, target: "/", userID: user.ID, params: params})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 before paying, got %d", rec.Code)
	}

	rec = env.do(env.payments.Pay, call{
		method: http.MethodPost,
		target: "/",
		body:   cardBody("4111111111111111"),
		userID: user.ID,
		params: map[string]string{"kind": "course", "id": strconv.Itoa(int(course.ID))},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Pay failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(env.lessons.Get, call{method: http.MethodGet, target: "/", userID: user.ID, params: params})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 after paying for the course, got %d", rec.Code)
	}
}

func TestUserHandler_Me(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "me@example.com")

	rec := env.do(env.users.Me, call{method: http.MethodGet, target: "/", userID: user.ID})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "me@example.com") {
		t.Fatalf("Expected own profile, got %d %s", rec.Code, rec.Body.String())
	}
}
