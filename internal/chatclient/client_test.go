package chatclient

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/tailortalk/internal/failure"
)

func TestSend_KeepsSessionID(t *testing.T) {
	var got []request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		got = append(got, req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"You are free.","session_id":"abc"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/chat", srv.Client())
	require.Equal(t, "You are free.", c.Send(context.Background(), "am I free?"))
	require.Equal(t, "abc", c.SessionID())
	require.Equal(t, "You are free.", c.Send(context.Background(), "thanks"))

	require.Len(t, got, 2)
	require.Equal(t, "am I free?", got[0].Message)
	require.Empty(t, got[0].SessionID)
	require.Equal(t, "abc", got[1].SessionID)
}

func TestSend_NoReply(t *testing.T) {
	for _, body := range []string{`{}`, `{"response":""}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		c := New(srv.URL, srv.Client())
		require.Equal(t, NoReply, c.Send(context.Background(), "hi"), body)
		srv.Close()
	}
}

func TestSend_StatusCategories(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{http.StatusTooManyRequests, failure.Quota.UserMessage()},
		{http.StatusServiceUnavailable, failure.Offline.UserMessage()},
		{http.StatusBadGateway, failure.Offline.UserMessage()},
		{http.StatusInternalServerError, failure.Other.UserMessage()},
		{http.StatusBadRequest, failure.Other.UserMessage()},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
			}))
			defer srv.Close()
			require.Equal(t, tt.want, New(srv.URL, srv.Client()).Send(context.Background(), "hi"))
		})
	}
}

func TestSend_Offline(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	c := New("http://"+addr+"/chat", nil)
	require.Equal(t, failure.Offline.UserMessage(), c.Send(context.Background(), "hi"))
}

func TestSend_GarbageBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()
	require.Equal(t, failure.Other.UserMessage(), New(srv.URL, srv.Client()).Send(context.Background(), "hi"))
}

func TestNew_DefaultEndpoint(t *testing.T) {
	c := New("", nil)
	require.Equal(t, DefaultEndpoint, c.endpoint)
}
