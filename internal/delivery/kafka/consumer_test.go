package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/importer"
)

type importStub struct {
	entity    string
	entityRes importer.Result
	entityErr error
	allCalled bool
	allReport importer.RunReport
}

func (s *importStub) ImportEntity(name string) (importer.Result, error) {
	s.entity = name
	return s.entityRes, s.entityErr
}

func (s *importStub) ImportAll() importer.RunReport {
	s.allCalled = true
	return s.allReport
}

func testConsumer(svc *importStub) *Consumer {
	return &Consumer{cfg: Config{MaxRetries: 2, BaseBackoff: time.Millisecond}, svc: svc}
}

func Test_HandleTrigger_SingleEntity(t *testing.T) {
	stub := &importStub{}
	c := testConsumer(stub)

	err := c.handleTrigger(context.Background(), []byte(`{"entity":"manufacturers"}`))

	require.NoError(t, err)
	assert.Equal(t, "manufacturers", stub.entity)
	assert.False(t, stub.allCalled)
}

func Test_HandleTrigger_All(t *testing.T) {
	stub := &importStub{}
	c := testConsumer(stub)

	err := c.handleTrigger(context.Background(), []byte(`{"entity":"all"}`))

	require.NoError(t, err)
	assert.True(t, stub.allCalled)
}

func Test_HandleTrigger_UnknownEntity_NonRetryable(t *testing.T) {
	stub := &importStub{entityErr: importer.ErrUnknownEntity}
	c := testConsumer(stub)

	err := c.handleTrigger(context.Background(), []byte(`{"entity":"nonsense"}`))

	require.Error(t, err)
	assert.True(t, isNonRetryable(err))
}

func Test_HandleTrigger_BadJSON_NonRetryable(t *testing.T) {
	c := testConsumer(&importStub{})

	err := c.handleTrigger(context.Background(), []byte(`{`))

	require.Error(t, err)
	assert.True(t, isNonRetryable(err))
}

func Test_Backoff_CappedAtFiveSeconds(t *testing.T) {
	base := 200 * time.Millisecond

	assert.Equal(t, time.Duration(0), backoff(0, base))
	assert.Equal(t, base, backoff(1, base))
	assert.Equal(t, 2*base, backoff(2, base))
	assert.Equal(t, 5*time.Second, backoff(10, base))
}

func Test_TrimErr_LimitsLength(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}

	got := trimErr(assert.AnError)
	assert.Equal(t, assert.AnError.Error(), got)
	assert.Len(t, trimErr(errOfLen(long)), 1000)
	assert.Equal(t, "", trimErr(nil))
}

type errOfLen []byte

func (e errOfLen) Error() string { return string(e) }
