package sse

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noFlush struct {
	http.ResponseWriter
}

func TestWriter(t *testing.T) {
	rec := httptest.NewRecorder()

	w, err := NewWriter(rec)
	require.NoError(t, err)
	require.NoError(t, w.Send("notifications", []map[string]string{{"id": "n1"}}))
	require.NoError(t, w.Ping(time.Unix(1700000000, 0)))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, rec.Flushed)
	assert.Equal(t,
		"event: notifications\ndata: [{\"id\":\"n1\"}]\n\n"+
			"event: ping\ndata: {\"timestamp\":1700000000}\n\n",
		rec.Body.String())
}

func TestWriter_Errors(t *testing.T) {
	_, err := NewWriter(noFlush{httptest.NewRecorder()})
	assert.ErrorIs(t, err, ErrStreamingUnsupported)

	w, err := NewWriter(httptest.NewRecorder())
	require.NoError(t, err)
	assert.Error(t, w.Send("bad", make(chan int)))
}

func TestLatest_KeepsNewest(t *testing.T) {
	l := NewLatest[int]()
	l.Put(1)
	l.Put(2)
	l.Put(3)

	assert.Equal(t, 3, <-l.C())
	select {
	case v := <-l.C():
		t.Fatalf("unexpected value %d", v)
	default:
	}
}
