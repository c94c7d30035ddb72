package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/insurance-quote-service/internal/mocks"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

func TestNewInfoService_PanicsWithoutDependencies(t *testing.T) {
	assert.Panics(t, func() {
		NewInfoService(nil, mocks.NewMockSystemStats(t), nil)
	})
}

func TestInfoService_Gather(t *testing.T) {
	repo := mocks.NewMockQuoteRepository(t)
	stats := mocks.NewMockSystemStats(t)

	repo.EXPECT().Count(mock.Anything).Return(int64(12), nil)
	stats.EXPECT().Logs(mock.Anything).Return(ports.LogStats{TotalSizeMB: 1.5, FilesCount: 3}, nil)
	stats.EXPECT().Memory(mock.Anything).Return(ports.MemoryStats{UsedMB: 42.1, TotalMB: 2048}, nil)

	info := NewInfoService(repo, stats, discardLogger()).Gather(context.Background())

	require.True(t, info.Records.OK())
	assert.Equal(t, int64(12), info.Records.Value)
	assert.Equal(t, 3, info.Logs.Value.FilesCount)
	assert.InDelta(t, 42.1, info.Memory.Value.UsedMB, 0)
}

func TestInfoService_Gather_PartialFailure(t *testing.T) {
	repo := mocks.NewMockQuoteRepository(t)
	stats := mocks.NewMockSystemStats(t)
	dbErr := errors.New("database is locked")

	repo.EXPECT().Count(mock.Anything).Return(int64(0), dbErr)
	stats.EXPECT().Logs(mock.Anything).Return(ports.LogStats{FilesCount: 1}, nil)
	stats.EXPECT().Memory(mock.Anything).Return(ports.MemoryStats{}, errors.New("no procfs"))

	info := NewInfoService(repo, stats, discardLogger()).Gather(context.Background())

	require.ErrorIs(t, info.Records.Err, dbErr)
	assert.True(t, info.Logs.OK())
	assert.Equal(t, 1, info.Logs.Value.FilesCount)
	assert.False(t, info.Memory.OK())
}
