package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	got []Event
}

func (s *captureSink) Publish(e Event) { s.got = append(s.got, e) }

func TestRecordAppendsAndFansOut(t *testing.T) {
	log := NewLog()
	sink := &captureSink{}
	log.Attach(sink)

	log.Record("loan.created", "loan", "1", map[string]string{"borrower": "bob"})
	log.Record("loan.repaid", "loan", "1", nil)

	events := log.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "loan.created", events[0].Fact)
	assert.Equal(t, "loan.repaid", events[1].Fact)
	assert.Equal(t, "bob", events[0].Fields["borrower"])
	assert.NotEmpty(t, events[0].ID)
	assert.NotEqual(t, events[0].ID, events[1].ID)

	require.Len(t, sink.got, 2)
	assert.Equal(t, events[0].ID, sink.got[0].ID)
}

type panicSink struct{}

func (panicSink) Publish(Event) { panic("sink down") }

func TestPanickingSinkDoesNotFailRecord(t *testing.T) {
	log := NewLog()
	healthy := &captureSink{}
	log.Attach(panicSink{})
	log.Attach(healthy)

	assert.NotPanics(t, func() {
		log.Record("escrow.funded", "escrow", "1", nil)
	})
	assert.Len(t, log.Events(), 1)
	assert.Len(t, healthy.got, 1)
}

func TestEventsReturnsSnapshot(t *testing.T) {
	log := NewLog()
	log.Record("pool.created", "pool", "USDC", nil)

	snap := log.Events()
	log.Record("pool.liquidity_added", "pool", "USDC", nil)
	assert.Len(t, snap, 1)
	assert.Len(t, log.Events(), 2)
}
