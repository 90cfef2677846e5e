package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSMSGateway_SendMessage_PostsFormEncodedBodyWithBasicAuth(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var gotForm string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		body, _ := io.ReadAll(r.Body)
		gotForm = string(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	g := NewHTTPSMSGateway(server.URL, "AC123", "secret", "+15550001111")
	err := g.SendMessage(context.Background(), "+15559998888", "leave now")
	require.NoError(t, err)

	assert.Equal(t, "/Accounts/AC123/Messages.json", gotPath)
	assert.Equal(t, "AC123", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Contains(t, gotForm, "Body=leave+now")
	assert.Contains(t, gotForm, "To=%2B15559998888")
}

func TestHTTPSMSGateway_SendMessage_NonSuccessStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	g := NewHTTPSMSGateway(server.URL, "AC123", "secret", "+15550001111")
	err := g.SendMessage(context.Background(), "+15559998888", "leave now")
	assert.Error(t, err)
}

func TestHTTPSMSGateway_SendMessage_TrimsTrailingSlashFromBaseURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	g := NewHTTPSMSGateway(server.URL+"/", "AC123", "secret", "+15550001111")
	require.NoError(t, g.SendMessage(context.Background(), "+15559998888", "hi"))
	assert.Equal(t, "/Accounts/AC123/Messages.json", gotPath)
}
