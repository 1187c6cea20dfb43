package restyutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	lock     sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.messages[id] = contents
}

func TestFormatHeaders(t *testing.T) {
	require.Equal(t, "", formatHeaders(http.Header{}))
	require.Equal(t, "Accept: text/html", formatHeaders(http.Header{"Accept": {"text/html"}}))
}

func TestInstrumentClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<table></table>"))
	}))
	defer server.Close()

	output := &memoryOutput{messages: map[string]string{}}
	client := resty.New()
	InstrumentClient(client, nil, output)

	res, err := client.R().
		SetContext(context.Background()).
		Get(server.URL + "/sched_layout_fall.htm")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
	require.Equal(t, "<table></table>", res.String())

	// exchanges are only dumped when debug logging is enabled
	output.lock.Lock()
	defer output.lock.Unlock()
	for _, msg := range output.messages {
		require.True(t, strings.Contains(msg, "sched_layout_fall.htm"))
	}
}
