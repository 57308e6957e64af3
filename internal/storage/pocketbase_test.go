package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"escrutinio/internal/models"
)

func TestOpenAndClosePocketBase(t *testing.T) {
	if testing.Short() {
		t.Skip("starts an HTTP server")
	}

	pb, err := OpenPocketBase(t.TempDir(), "127.0.0.1:0", zaptest.NewLogger(t))
	require.NoError(t, err)

	p := models.Party{Abbreviation: "upl", Color: "#B5121B", Ideology: 4}
	require.NoError(t, pb.Parties().SaveParty(&p))

	got, err := pb.Parties().FindParty(context.Background(), "UPL")
	require.NoError(t, err)
	assert.Equal(t, "#B5121B", got.Color)

	require.NoError(t, pb.Close())
	select {
	case <-pb.done:
	default:
		t.Fatal("app still running after Close")
	}
}
