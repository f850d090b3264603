package mediasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/telecast/internal/models"
)

func remoteProgram(ratingKey string) *models.Program {
	return &models.Program{
		SourceKind: models.SourceRemote,
		RatingKey:  ratingKey,
		ServerName: "plex-main",
	}
}

func TestResolveStreamURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/parts/12345/stream", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"http://media.local/parts/12345.mp4"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "secret")

	got, err := client.ResolveStreamURL(context.Background(), remoteProgram("12345"))

	require.NoError(t, err)
	assert.Equal(t, "http://media.local/parts/12345.mp4", got)
}

func TestResolveStreamURL_NotConfigured(t *testing.T) {
	client := NewClient("", "")

	_, err := client.ResolveStreamURL(context.Background(), remoteProgram("12345"))

	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestResolveStreamURL_NotRemote(t *testing.T) {
	client := NewClient("http://media.local", "")
	program := &models.Program{SourceKind: models.SourceFile, SourcePath: "/media/a.mp4"}

	_, err := client.ResolveStreamURL(context.Background(), program)

	assert.ErrorIs(t, err, ErrNotRemote)
}

func TestResolveStreamURL_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "")

	_, err := client.ResolveStreamURL(context.Background(), remoteProgram("12345"))

	assert.Error(t, err)
}

func TestResolveStreamURL_EmptyURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":""}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "")

	_, err := client.ResolveStreamURL(context.Background(), remoteProgram("12345"))

	assert.Error(t, err)
}
