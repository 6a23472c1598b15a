package service_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"todohub/internal/adapter/database/memory"
	"todohub/internal/core/domain"
	"todohub/internal/core/port"
	"todohub/internal/core/service"
	"todohub/internal/core/telemetry"
	. "todohub/pkg/test"
	"todohub/pkg/test/factory"
)

type change struct {
	kind port.ChangeKind
	id   int
}

type TodoServiceTestSuite struct {
	suite.Suite
	Service *service.TodoService
	Changes []change
	ctx     context.Context
}

func (s *TodoServiceTestSuite) SetupTest() {
	clock := NewClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	probe := telemetry.NewOTELProbe(
		otelzap.New(zap.NewNop()),
		telemetry.NewAppMetrics(prometheus.NewRegistry()),
	)

	s.Service = service.NewTodoService(memory.NewTodoRepository(memory.WithClock(clock.Now)), probe)
	s.Changes = nil
	s.Service.Subscribe(port.ChangeListenerFunc(func(_ context.Context, kind port.ChangeKind, id int) {
		s.Changes = append(s.Changes, change{kind, id})
	}))

	s.ctx = context.Background()
}

func TestTodoServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoServiceTestSuite))
}

func (s *TodoServiceTestSuite) create(customData ...map[string]any) domain.Todo {
	todo, err := s.Service.Create(s.ctx, factory.NewTodoDraft(customData...))
	Expect(err).To(BeNil())

	return todo
}

func (s *TodoServiceTestSuite) TestService_List_Empty() {
	Expect(s.Service.List(s.ctx, domain.TodoFilter{})).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestService_List_StatusAndQueryCompose() {
	s.create(map[string]any{"Title": "Buy milk", "Status": "completed"})
	eggs := s.create(map[string]any{"Title": "Buy eggs"})
	s.create(map[string]any{"Title": "Clean house"})
	bread := s.create(map[string]any{"Title": "Bake", "Description": "need to buy flour"})

	todos := s.Service.List(s.ctx, domain.TodoFilter{
		Status: domain.TodoStatusPending,
		Query:  "BUY",
	})

	Expect(todos).To(HaveLen(2))
	Expect(todos[0].ID).To(Equal(eggs.ID))
	Expect(todos[1].ID).To(Equal(bread.ID))

	Expect(s.Service.List(s.ctx, domain.TodoFilter{Status: domain.TodoStatusCompleted})).To(HaveLen(1))
	Expect(s.Service.List(s.ctx, domain.TodoFilter{Query: "buy"})).To(HaveLen(3))
}

func (s *TodoServiceTestSuite) TestService_Search_EmptyQueryMatchesList() {
	s.create(map[string]any{"Title": "one"})
	s.create(map[string]any{"Title": "two"})

	Expect(s.Service.Search(s.ctx, "")).To(Equal(s.Service.List(s.ctx, domain.TodoFilter{})))
}

func (s *TodoServiceTestSuite) TestService_Create_NotifiesListeners() {
	todo := s.create()

	Expect(s.Changes).To(Equal([]change{{port.ChangeCreated, todo.ID}}))
}

func (s *TodoServiceTestSuite) TestService_Create_ValidationErrorDoesNotNotify() {
	_, err := s.Service.Create(s.ctx, domain.TodoDraft{Title: ""})

	_, ok := domain.AsValidationError(err)
	Expect(ok).To(BeTrue())
	Expect(s.Changes).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestService_UpdateStatus() {
	todo := s.create(map[string]any{"Title": "Learn FastAPI", "Priority": 3})

	updated, err := s.Service.UpdateStatus(s.ctx, todo.ID, domain.TodoStatusInProgress)

	Expect(err).To(BeNil())
	Expect(updated.Status).To(Equal(domain.TodoStatusInProgress))
	Expect(updated.Title).To(Equal("Learn FastAPI"))
	Expect(updated.UpdatedAt).To(BeTemporally(">", todo.UpdatedAt))
	Expect(s.Changes).To(ContainElement(change{port.ChangeUpdated, todo.ID}))
}

func (s *TodoServiceTestSuite) TestService_UpdateStatus_Invalid() {
	todo := s.create()

	_, err := s.Service.UpdateStatus(s.ctx, todo.ID, domain.TodoStatus("archived"))

	validationErr, ok := domain.AsValidationError(err)
	Expect(ok).To(BeTrue())
	Expect(validationErr.Violations[0].Field).To(Equal("status"))
}

func (s *TodoServiceTestSuite) TestService_Update_NotFound() {
	_, err := s.Service.Update(s.ctx, 999, domain.TodoPatch{Title: domain.Some("x")})

	Expect(domain.IsNotFound(err)).To(BeTrue())
	Expect(s.Changes).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestService_Delete() {
	todo := s.create()

	Expect(s.Service.Delete(s.ctx, todo.ID)).To(BeTrue())
	Expect(s.Service.Delete(s.ctx, 999)).To(BeFalse())

	_, err := s.Service.Get(s.ctx, todo.ID)
	Expect(domain.IsNotFound(err)).To(BeTrue())

	Expect(s.Changes).To(Equal([]change{
		{port.ChangeCreated, todo.ID},
		{port.ChangeDeleted, todo.ID},
	}))
}

func (s *TodoServiceTestSuite) TestService_Stats_Empty() {
	stats := s.Service.Stats(s.ctx)

	Expect(stats).To(Equal(domain.TodoStats{}))
}

func (s *TodoServiceTestSuite) TestService_Stats_CompletionRate() {
	for i := 0; i < 4; i++ {
		s.create()
	}

	s.Service.UpdateStatus(s.ctx, 1, domain.TodoStatusCompleted)
	s.Service.UpdateStatus(s.ctx, 2, domain.TodoStatusCompleted)
	s.Service.UpdateStatus(s.ctx, 3, domain.TodoStatusInProgress)

	stats := s.Service.Stats(s.ctx)

	Expect(stats.Total).To(Equal(4))
	Expect(stats.Completed).To(Equal(2))
	Expect(stats.InProgress).To(Equal(1))
	Expect(stats.Pending).To(Equal(1))
	Expect(stats.CompletionRate).To(Equal(50.0))
}

func (s *TodoServiceTestSuite) TestService_Stats_RoundsToTwoDecimals() {
	for i := 0; i < 3; i++ {
		s.create()
	}

	s.Service.UpdateStatus(s.ctx, 1, domain.TodoStatusCompleted)

	Expect(s.Service.Stats(s.ctx).CompletionRate).To(Equal(33.33))
}
