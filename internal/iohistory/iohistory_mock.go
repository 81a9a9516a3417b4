package iohistory

import (
	"time"

	"github.com/physqa/rundiag/internal/contract"
	"github.com/physqa/rundiag/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginDiagnosis implements the HistoryStore interface.
func (m *MockHistoryStore) BeginDiagnosis(startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndDiagnosis implements the HistoryStore interface.
func (m *MockHistoryStore) EndDiagnosis(diagnosisID int64, endTime time.Time, totalRuns int) error {
	args := m.Called(diagnosisID, endTime, totalRuns)
	return args.Error(0)
}

// RecordRunCauses implements the HistoryStore interface.
func (m *MockHistoryStore) RecordRunCauses(diagnosisID int64, diagnosisTime time.Time, diag schema.RunDiagnosis) error {
	args := m.Called(diagnosisID, diagnosisTime, diag)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllDiagnosisRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllDiagnosisRuns() ([]schema.DiagnosisRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.DiagnosisRunRecord)
	return runs, args.Error(1)
}

// GetAllCauseScores implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllCauseScores() ([]schema.CauseScoreRecord, error) {
	args := m.Called()
	scores, _ := args.Get(0).([]schema.CauseScoreRecord)
	return scores, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
