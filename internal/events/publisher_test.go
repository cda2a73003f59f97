package events

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/easyaudit-api/internal/dto"
)

func TestNewNATSPublisherWithoutConnectionIsNop(t *testing.T) {
	publisher := NewNATSPublisher(nil, "", "node-1", zerolog.Nop())
	require.IsType(t, NopPublisher{}, publisher)
	require.NoError(t, publisher.Publish(context.Background(), dto.ActivityResponse{ID: 1, Event: "user.login"}))
}

func TestConnectWithoutURL(t *testing.T) {
	conn, err := Connect("  ", "easyaudit")
	require.NoError(t, err)
	require.Nil(t, conn)
}
