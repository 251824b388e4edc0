package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/fabriq/internal/model"
)

func newMockStream(t *testing.T) (*Stream, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &Stream{pool: mock}, mock
}

func TestStream_Send_BatchesOneInsertPerConsumer(t *testing.T) {
	s, mock := newMockStream(t)
	ctx := context.Background()

	mock.ExpectBatch()
	mock.ExpectExec("INSERT INTO event_queue").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO event_queue").WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.Send(ctx, model.Event{OperationID: "op-1", ModelType: model.ModelTypeDeployment}, []string{"reconciler", "gitops"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStream_Receive_AppliesLimitOnlyWhenPositive(t *testing.T) {
	s, mock := newMockStream(t)
	ctx := context.Background()

	cols := []string{"id", "event_timestamp", "consumer_id", "operation_id", "model_type", "event_type",
		"serialized_current_model", "serialized_previous_model"}
	mock.ExpectQuery("FROM event_queue").
		WithArgs("reconciler", 5).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			"ev-1", time.Now(), "reconciler", "op-1", "deployment", "created", []byte("{}"), []byte(nil)))

	events, err := s.Receive(ctx, "reconciler", 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.ModelType("deployment"), events[0].ModelType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStream_Delete_ScopesToConsumerAndEventID(t *testing.T) {
	s, mock := newMockStream(t)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM event_queue").
		WithArgs("reconciler", "ev-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := s.Delete(ctx, "reconciler", "ev-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStream_Len_CountsQueuedRowsForConsumer(t *testing.T) {
	s, mock := newMockStream(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("reconciler").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	n, err := s.Len(ctx, "reconciler")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
