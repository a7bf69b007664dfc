package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/apperr"
	"github.com/rosterd/rosterd/internal/metrics"
	"github.com/rosterd/rosterd/internal/model"
	"github.com/rosterd/rosterd/internal/repository"
)

// fakeStudentStore mirrors the repository semantics in memory: UUID
// validation, case-insensitive unique email, newest-first listing.
type fakeStudentStore struct {
	students map[string]*model.Student
	now      time.Time
	err      error // forced failure for every call when set
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{
		students: make(map[string]*model.Student),
		now:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStudentStore) checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Wrap(apperr.KindMalformedID, "Invalid ID format", err)
	}
	return nil
}

func (f *fakeStudentStore) ListStudents(_ context.Context, search string, page, limit int) ([]*model.Student, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}

	var matched []*model.Student
	needle := strings.ToLower(search)
	for _, s := range f.students {
		if needle == "" ||
			strings.Contains(strings.ToLower(s.Name), needle) ||
			strings.Contains(strings.ToLower(s.Email), needle) {
			matched = append(matched, s)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeStudentStore) GetStudent(_ context.Context, id string) (*model.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := f.checkID(id); err != nil {
		return nil, err
	}
	s, ok := f.students[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "Student not found")
	}
	return s, nil
}

func (f *fakeStudentStore) CreateStudent(_ context.Context, student *model.Student) (*model.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	email := strings.ToLower(student.Email)
	for _, s := range f.students {
		if s.Email == email {
			return nil, apperr.New(apperr.KindDuplicate, "Email already exists")
		}
	}

	created := &model.Student{
		ID:        uuid.NewString(),
		Name:      student.Name,
		Age:       student.Age,
		Grade:     student.Grade,
		Email:     email,
		CreatedAt: f.now,
	}
	f.now = f.now.Add(time.Second)
	f.students[created.ID] = created
	return created, nil
}

func (f *fakeStudentStore) UpdateStudent(_ context.Context, id string, update repository.StudentUpdate) (*model.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, err := f.GetStudent(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		s.Name = *update.Name
	}
	if update.Age != nil {
		s.Age = *update.Age
	}
	if update.Grade != nil {
		s.Grade = *update.Grade
	}
	if update.Email != nil {
		s.Email = strings.ToLower(*update.Email)
	}
	return s, nil
}

func (f *fakeStudentStore) DeleteStudent(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, err := f.GetStudent(context.Background(), id); err != nil {
		return err
	}
	delete(f.students, id)
	return nil
}

// testEnvelope mirrors the wire shape for decoding in assertions.
type testEnvelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Errors     []string        `json:"errors"`
	Pagination *Pagination     `json:"pagination"`
}

func newStudentRouter(store *fakeStudentStore) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewStudentHandler(logger, store, metrics.NewNoop(), 10, 100)

	r := chi.NewRouter()
	r.Route("/api/students", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env testEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return rec, env
}

func seedStudents(t *testing.T, store *fakeStudentStore, n int) []*model.Student {
	t.Helper()
	out := make([]*model.Student, 0, n)
	for i := 0; i < n; i++ {
		s, err := store.CreateStudent(context.Background(), &model.Student{
			Name:  fmt.Sprintf("Student %02d", i),
			Age:   18 + i%5,
			Grade: "A",
			Email: fmt.Sprintf("student%02d@example.com", i),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		out = append(out, s)
	}
	return out
}

func TestStudentCreate(t *testing.T) {
	store := newFakeStudentStore()
	router := newStudentRouter(store)

	rec, env := doRequest(t, router, http.MethodPost, "/api/students",
		`{"name":"Alice","age":20,"grade":"A","email":"Alice@Example.COM"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if !env.Success {
		t.Fatal("success = false, want true")
	}

	var got model.Student
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", got.Email)
	}
	if got.ID == "" {
		t.Error("id not assigned")
	}
}

func TestStudentCreate_ValidationEnumeratesAllFields(t *testing.T) {
	store := newFakeStudentStore()
	router := newStudentRouter(store)

	rec, env := doRequest(t, router, http.MethodPost, "/api/students",
		`{"name":"","grade":"","email":"nope"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Success {
		t.Error("success = true, want false")
	}
	if env.Message != "Validation failed" {
		t.Errorf("message = %q", env.Message)
	}
	// name, age, grade, email all violated
	if len(env.Errors) != 4 {
		t.Errorf("errors = %v, want 4 entries", env.Errors)
	}
}

func TestStudentCreate_DuplicateEmailConflicts(t *testing.T) {
	store := newFakeStudentStore()
	router := newStudentRouter(store)

	body := `{"name":"Alice","age":20,"grade":"A","email":"alice@example.com"}`
	if rec, _ := doRequest(t, router, http.MethodPost, "/api/students", body); rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rec.Code)
	}

	rec, env := doRequest(t, router, http.MethodPost, "/api/students",
		`{"name":"Other","age":21,"grade":"B","email":"ALICE@example.com"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if env.Message != "Email already exists" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestStudentCreate_MalformedBody(t *testing.T) {
	store := newFakeStudentStore()
	router := newStudentRouter(store)

	rec, env := doRequest(t, router, http.MethodPost, "/api/students", `{"name":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Message != "Invalid request body" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestStudentGet(t *testing.T) {
	store := newFakeStudentStore()
	router := newStudentRouter(store)
	seeded := seedStudents(t, store, 1)

	t.Run("found", func(t *testing.T) {
		rec, env := doRequest(t, router, http.MethodGet, "/api/students/"+seeded[0].ID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var got model.Student
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if got.ID != seeded[0].ID {
			t.Errorf("id = %q, want %q", got.ID, seeded[0].ID)
		}
	})

	t.Run("absent id is 404", func(t *testing.T) {
		rec, env := doRequest(t, router, http.MethodGet, "/api/students/"+uuid.NewString(), "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		if env.Message != "Student not found" {
			t.Errorf("message = %q", env.Message)
		}
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		rec, env := doRequest(t, router, http.MethodGet, "/api/students/not-a-uuid", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if env.Message != "Invalid ID format" {
			t.Errorf("message = %q", env.Message)
		}
	})
}

func TestStudentList_Pagination(t *testing.T) {
	store := newFakeStudentStore()
	router := newStudentRouter(store)
	seedStudents(t, store, 25)

	rec, env := doRequest(t, router, http.MethodGet, "/api/students?page=2&limit=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if env.Pagination == nil {
		t.Fatal("pagination missing")
	}
	if env.Pagination.Total != 25 || env.Pagination.Page != 2 || env.Pagination.Pages != 3 {
		t.Errorf("pagination = %+v, want total 25 page 2 pages 3", env.Pagination)
	}

	var items []*model.Student
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(items) != 10 {
		t.Fatalf("len(items) = %d, want 10", len(items))
	}
	// Newest first: page 2 of 25 seeded one second apart starts at the
	// 11th newest.
	if items[0].Name != "Student 14" {
		t.Errorf("items[0].Name = %q, want %q", items[0].Name, "Student 14")
	}
}

func TestStudentList_Search(t *testing.T) {
	store := newFakeStudentStore()
	router := newStudentRouter(store)
	seedStudents(t, store, 3)

	if _, err := store.CreateStudent(context.Background(), &model.Student{
		Name: "Zelda Unique", Age: 19, Grade: "B", Email: "zelda@school.edu",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	t.Run("matches name", func(t *testing.T) {
		_, env := doRequest(t, router, http.MethodGet, "/api/students?search=zelda", "")
		if env.Pagination.Total != 1 {
			t.Errorf("total = %d, want 1", env.Pagination.Total)
		}
	})

	t.Run("matches email", func(t *testing.T) {
		_, env := doRequest(t, router, http.MethodGet, "/api/students?search=school.edu", "")
		if env.Pagination.Total != 1 {
			t.Errorf("total = %d, want 1", env.Pagination.Total)
		}
	})

	t.Run("no matches is empty list not error", func(t *testing.T) {
		rec, env := doRequest(t, router, http.MethodGet, "/api/students?search=nobody", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var items []*model.Student
		if err := json.Unmarshal(env.Data, &items); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("len(items) = %d, want 0", len(items))
		}
		if env.Pagination.Total != 0 || env.Pagination.Pages != 0 {
			t.Errorf("pagination = %+v, want zero total and pages", env.Pagination)
		}
	})
}

func TestStudentUpdate(t *testing.T) {
	store := newFakeStudentStore()
	router := newStudentRouter(store)
	seeded := seedStudents(t, store, 1)

	t.Run("partial update changes only supplied fields", func(t *testing.T) {
		rec, env := doRequest(t, router, http.MethodPut, "/api/students/"+seeded[0].ID,
			`{"grade":"A+"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}
		var got model.Student
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if got.Grade != "A+" {
			t.Errorf("grade = %q, want A+", got.Grade)
		}
		if got.Name != seeded[0].Name {
			t.Errorf("name changed: %q", got.Name)
		}
	})

	t.Run("empty update is 400", func(t *testing.T) {
		rec, _ := doRequest(t, router, http.MethodPut, "/api/students/"+seeded[0].ID, `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("absent id is 404", func(t *testing.T) {
		rec, _ := doRequest(t, router, http.MethodPut, "/api/students/"+uuid.NewString(),
			`{"grade":"C"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestStudentDelete(t *testing.T) {
	store := newFakeStudentStore()
	router := newStudentRouter(store)
	seeded := seedStudents(t, store, 1)

	rec, env := doRequest(t, router, http.MethodDelete, "/api/students/"+seeded[0].ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if string(env.Data) != "{}" {
		t.Errorf("data = %s, want {}", env.Data)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/students/"+seeded[0].ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", rec.Code)
	}
}

func TestStudentHandlers_InternalErrorIsOpaque(t *testing.T) {
	store := newFakeStudentStore()
	store.err = fmt.Errorf("pool exhausted: %s", "postgres://user:secret@db/app")
	router := newStudentRouter(store)

	rec, env := doRequest(t, router, http.MethodGet, "/api/students", "")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if env.Message != "Something went wrong on the server" {
		t.Errorf("message = %q", env.Message)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Error("internal detail leaked into response body")
	}
}

func TestStudentHandlers_TimeoutMapsTo408(t *testing.T) {
	store := newFakeStudentStore()
	store.err = apperr.New(apperr.KindTimeout, "Database operation timed out")
	router := newStudentRouter(store)

	rec, env := doRequest(t, router, http.MethodGet, "/api/students", "")

	if rec.Code != http.StatusRequestTimeout {
		t.Fatalf("status = %d, want 408", rec.Code)
	}
	if env.Message != "Database operation timed out" {
		t.Errorf("message = %q", env.Message)
	}
}
