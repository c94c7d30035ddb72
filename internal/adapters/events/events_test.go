package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvent struct{}

func (stubEvent) EventType() string { return "stub" }
func (stubEvent) Key() string       { return "1" }
func (stubEvent) Payload() any      { return map[string]string{"ok": "yes"} }

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), stubEvent{}))
}

func TestNewKafka_IsLazy(t *testing.T) {
	k, err := NewKafka(KafkaConfig{Brokers: []string{"127.0.0.1:1"}, Topic: "cotacoes.created", ClientID: "test"})
	require.NoError(t, err)
	t.Cleanup(k.Close)

	assert.Equal(t, "kafka", k.Name())
}
