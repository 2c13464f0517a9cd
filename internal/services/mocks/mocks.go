package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/harentsoaR/lipi-scribe-api/internal/models"
)

type MockRecordInserter struct {
	mock.Mock
}

func (m *MockRecordInserter) Insert(ctx context.Context, rec *models.OPDRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendFollowUpReminder(rec *models.OPDRecord) {
	m.Called(rec)
}
