package common_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/schooladmin/common"
)

func TestNewHttpClient(t *testing.T) {
	client := common.NewHttpClient("MyUserAgent", nil)
	require.NotNil(t, client)

	base := &http.Client{Timeout: 3 * time.Second}
	common.NewHttpClient("MyUserAgent", base)
	assert.Equal(t, 3*time.Second, base.Timeout, "an explicit timeout is kept")

	unset := &http.Client{}
	common.NewHttpClient("MyUserAgent", unset)
	assert.Zero(t, unset.Timeout, "no client-wide deadline is imposed")
}

func TestHttpClient_SetsUserAgent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "TestUserAgent" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "wrong user-agent")
			return
		}
		fmt.Fprint(w, "hello world")
	}))
	defer ts.Close()

	hc := common.NewHttpClient("TestUserAgent", &http.Client{})

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := hc.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello world", string(body))
	assert.Empty(t, req.Header.Get("User-Agent"), "the caller's request is not mutated")
}
