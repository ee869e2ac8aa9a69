package jobs

import (
	"context"
	"errors"
	"testing"

	"agritrace/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockChainVerifier struct {
	mock.Mock
}

func (m *MockChainVerifier) VerifyChain(ctx context.Context) (usecase.ChainReport, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(usecase.ChainReport)
	return r, args.Error(1)
}

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New("not a spec", new(MockChainVerifier), zap.NewNop())
	assert.Error(t, err)
}

func TestVerifyChainTask_Logs(t *testing.T) {
	broken := int64(3)
	cases := []struct {
		name    string
		report  usecase.ChainReport
		err     error
		level   zapcore.Level
		message string
	}{
		{"valid", usecase.ChainReport{Length: 5, Valid: true, Head: "0xabc"}, nil, zapcore.InfoLevel, "ledger chain verified"},
		{"broken", usecase.ChainReport{Length: 5, BrokenAt: &broken, Reason: "tx hash mismatch"}, nil, zapcore.ErrorLevel, "ledger chain broken"},
		{"error", usecase.ChainReport{}, errors.New("db down"), zapcore.ErrorLevel, "verify chain failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := new(MockChainVerifier)
			v.On("VerifyChain", mock.Anything).Return(tc.report, tc.err)

			core, logs := observer.New(zapcore.DebugLevel)
			s, err := New("@every 1h", v, zap.New(core))
			require.NoError(t, err)

			s.VerifyChainTask()

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.level, entries[0].Level)
			assert.Equal(t, tc.message, entries[0].Message)
			v.AssertExpectations(t)
		})
	}
}

func TestSchedulerStartStop(t *testing.T) {
	s, err := New("", new(MockChainVerifier), zap.NewNop())
	require.NoError(t, err)
	s.Start()
	s.Stop()
	s.SystemMonitorTask()
}
