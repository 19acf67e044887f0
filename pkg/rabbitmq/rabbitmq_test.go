package rabbitmq

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientWithoutChannel(t *testing.T) {
	c := &Client{}
	assert.Error(t, c.Publish("rating.submitted", []byte("{}")))
	assert.Error(t, c.ConsumeRatingEvents(func(Delivery) error { return nil }, nil))
	assert.NoError(t, c.Close())
}

func TestPublishAndConsume(t *testing.T) {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		t.Skip("RABBITMQ_URL not set, skipping broker test")
	}

	c, err := NewClient(Config{URL: url})
	require.NoError(t, err)
	defer c.Close()

	received := make(chan Delivery, 1)
	require.NoError(t, c.ConsumeRatingEvents(func(d Delivery) error {
		received <- d
		return nil
	}, nil))

	require.NoError(t, c.Publish("rating.submitted", []byte(`{"rating":4}`)))

	select {
	case d := <-received:
		assert.Equal(t, "rating.submitted", d.RoutingKey)
		assert.JSONEq(t, `{"rating":4}`, string(d.Body))
	case <-time.After(5 * time.Second):
		t.Fatal("rating event not delivered")
	}
}
