package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServer_StartShutdown(t *testing.T) {
	port := freePort(t)
	srv := New(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), port, "", "")

	require.NoError(t, srv.Start())

	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get("http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	err, open := <-srv.Err()
	assert.NoError(t, err)
	assert.False(t, open)
}

func TestServer_ListenFailure(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer l.Close()

	srv := New(http.NotFoundHandler(), l.Addr().(*net.TCPAddr).Port, "", "")
	require.NoError(t, srv.Start())

	select {
	case err := <-srv.Err():
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a listen error")
	}
}
