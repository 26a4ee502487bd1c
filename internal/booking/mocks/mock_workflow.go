package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"carwash/internal/audit"
	"carwash/internal/booking"
	"carwash/internal/bookingstate"
)

// MockWorkflow is a mock implementation of booking.Workflow
type MockWorkflow struct {
	mock.Mock
}

func (m *MockWorkflow) Create(ctx context.Context, actorID string, in booking.CreateInput) (*booking.Detail, error) {
	args := m.Called(ctx, actorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Detail), args.Error(1)
}

func (m *MockWorkflow) Get(ctx context.Context, id string) (*booking.Detail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Detail), args.Error(1)
}

func (m *MockWorkflow) List(ctx context.Context, f booking.ListFilter) (*booking.Page, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Page), args.Error(1)
}

func (m *MockWorkflow) History(ctx context.Context, id string) ([]bookingstate.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bookingstate.Record), args.Error(1)
}

func (m *MockWorkflow) Activity(ctx context.Context, id string) ([]audit.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Entry), args.Error(1)
}

func (m *MockWorkflow) Initialize(ctx context.Context, id, actorID string) (bookingstate.Record, error) {
	args := m.Called(ctx, id, actorID)
	return args.Get(0).(bookingstate.Record), args.Error(1)
}

func (m *MockWorkflow) Transition(ctx context.Context, id string, action bookingstate.Action, actorID string) (bookingstate.Result, error) {
	args := m.Called(ctx, id, action, actorID)
	return args.Get(0).(bookingstate.Result), args.Error(1)
}

var _ booking.Workflow = (*MockWorkflow)(nil)
