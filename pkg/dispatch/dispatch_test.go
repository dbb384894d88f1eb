package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webbreaker/webinspect/pkg/config"
	"github.com/webbreaker/webinspect/pkg/proto"
)

// recordingServer answers every request with an empty JSON list and keeps
// the request URIs in arrival order
type recordingServer struct {
	*httptest.Server
	mutex sync.Mutex
	uris  []string
}

func newRecordingServer(t *testing.T) *recordingServer {
	t.Helper()

	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mutex.Lock()
		rs.uris = append(rs.uris, r.RequestURI)
		rs.mutex.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	t.Cleanup(rs.Close)

	return rs
}

func (rs *recordingServer) requestURIs() []string {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	return append([]string(nil), rs.uris...)
}

func newTestDispatcher(t *testing.T, host string, workers int) *Dispatcher {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.Host = host
	cfg.Listen.Workers = workers

	dispatcher, err := NewDispatcher(context.Background(), cfg)
	require.NoError(t, err)

	return dispatcher
}

func collect(d *Dispatcher) <-chan []*proto.Response {
	done := make(chan []*proto.Response)

	go func() {
		var responses []*proto.Response
		for resp := range d.Responses() {
			responses = append(responses, resp)
		}
		done <- responses
	}()

	return done
}

func TestDispatcher(t *testing.T) {
	t.Run("HighestPriorityFirst", func(t *testing.T) {
		server := newRecordingServer(t)
		dispatcher := newTestDispatcher(t, server.URL, 1)
		done := collect(dispatcher)

		dispatcher.Send(&proto.Request{ID: "low", Operation: "get-current-status", Priority: 1, Args: proto.Args{"scan_id": "low"}})
		dispatcher.Send(&proto.Request{ID: "high", Operation: "GetCurrentStatus", Priority: 9, Args: proto.Args{"scan_id": "high"}})
		dispatcher.Send(&proto.Request{ID: "mid", Operation: "get_current_status", Priority: 5, Args: proto.Args{"scan_id": "mid"}})
		dispatcher.Start()
		require.NoError(t, dispatcher.Close())

		responses := <-done
		require.Len(t, responses, 3)

		var requestIDs []string
		for _, resp := range responses {
			assert.True(t, resp.Success)
			assert.Equal(t, 200, resp.ResponseCode)
			assert.Len(t, resp.ID, 64)
			requestIDs = append(requestIDs, resp.RequestID)
		}

		assert.Equal(t, []string{"high", "mid", "low"}, requestIDs)
		assert.Equal(t, []string{
			"/webinspect/scanner/scans/high?action=getcurrentstatus",
			"/webinspect/scanner/scans/mid?action=getcurrentstatus",
			"/webinspect/scanner/scans/low?action=getcurrentstatus",
		}, server.requestURIs())
	})

	t.Run("EveryRequestAnsweredOnce", func(t *testing.T) {
		server := newRecordingServer(t)
		dispatcher := newTestDispatcher(t, server.URL, 4)
		done := collect(dispatcher)
		dispatcher.Start()

		for i := 0; i < 20; i++ {
			dispatcher.Send(&proto.Request{Operation: "list-scans", Priority: i % 3})
		}
		require.NoError(t, dispatcher.Close())

		responses := <-done
		require.Len(t, responses, 20)

		seen := make(map[string]bool)
		for _, resp := range responses {
			assert.Len(t, resp.RequestID, 64)
			assert.False(t, seen[resp.RequestID])
			seen[resp.RequestID] = true
		}
		assert.Len(t, server.requestURIs(), 20)
	})

	t.Run("BadRequestsSendNothing", func(t *testing.T) {
		server := newRecordingServer(t)
		dispatcher := newTestDispatcher(t, server.URL, 1)
		done := collect(dispatcher)
		dispatcher.Start()

		dispatcher.Send(&proto.Request{ID: "unknown", Operation: "format-disk"})
		dispatcher.Send(&proto.Request{ID: "missing-arg", Operation: "stop-scan", Args: proto.Args{}})
		dispatcher.Send(&proto.Request{ID: "bad-port", Operation: "start-proxy", Args: proto.Args{"port": "http"}})
		require.NoError(t, dispatcher.Close())

		responses := <-done
		require.Len(t, responses, 3)

		messages := make(map[string]string)
		for _, resp := range responses {
			assert.False(t, resp.Success)
			assert.Equal(t, -1, resp.ResponseCode)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "RequestError", resp.Error.Kind)
			messages[resp.RequestID] = resp.Message
		}

		assert.Equal(t, `unsupported operation: operation="format-disk"`, messages["unknown"])
		assert.Equal(t, `missing required arg: arg="scan_id"`, messages["missing-arg"])
		assert.Empty(t, server.requestURIs())
	})

	t.Run("RateLimited", func(t *testing.T) {
		server := newRecordingServer(t)

		cfg := config.DefaultConfig()
		cfg.Server.Host = server.URL
		cfg.Listen.Workers = 2
		cfg.Listen.RateLimit = 1000

		dispatcher, err := NewDispatcher(context.Background(), cfg)
		require.NoError(t, err)
		done := collect(dispatcher)
		dispatcher.Start()

		for i := 0; i < 5; i++ {
			dispatcher.Send(&proto.Request{Operation: "list-policies"})
		}
		require.NoError(t, dispatcher.Close())

		responses := <-done
		require.Len(t, responses, 5)
		for _, resp := range responses {
			assert.True(t, resp.Success)
		}
		assert.Len(t, server.requestURIs(), 5)
	})

	t.Run("CanceledContextSendsNothing", func(t *testing.T) {
		server := newRecordingServer(t)

		cfg := config.DefaultConfig()
		cfg.Server.Host = server.URL

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		dispatcher, err := NewDispatcher(ctx, cfg)
		require.NoError(t, err)
		done := collect(dispatcher)

		dispatcher.Send(&proto.Request{ID: "late", Operation: "list-scans"})
		require.NoError(t, dispatcher.Close())

		responses := <-done
		require.Len(t, responses, 1)
		assert.False(t, responses[0].Success)
		assert.Equal(t, "request not sent: context canceled", responses[0].Message)
		assert.Empty(t, server.requestURIs())
	})

	t.Run("RejectAnswersUnqueuedRequests", func(t *testing.T) {
		server := newRecordingServer(t)
		dispatcher := newTestDispatcher(t, server.URL, 1)
		done := collect(dispatcher)
		dispatcher.Start()

		dispatcher.Reject("r-9", errors.New(`missing required field: field="operation"`))
		dispatcher.Send(&proto.Request{ID: "r-10", Operation: "list-scans"})
		require.NoError(t, dispatcher.Close())

		responses := <-done
		require.Len(t, responses, 2)

		byRequestID := make(map[string]*proto.Response)
		for _, resp := range responses {
			assert.Len(t, resp.ID, 64)
			byRequestID[resp.RequestID] = resp
		}

		require.Contains(t, byRequestID, "r-9")
		assert.False(t, byRequestID["r-9"].Success)
		assert.Equal(t, -1, byRequestID["r-9"].ResponseCode)
		assert.Equal(t, `missing required field: field="operation"`, byRequestID["r-9"].Message)
		assert.True(t, byRequestID["r-10"].Success)
		assert.Len(t, server.requestURIs(), 1)
	})

	t.Run("BadClientConfig", func(t *testing.T) {
		dispatcher, err := NewDispatcher(context.Background(), config.DefaultConfig())
		assert.Nil(t, dispatcher)
		assert.EqualError(t, err, `could not create client: missing required field: field="host"`)
	})
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"ListScans", "list_scans", "list-scans", "LIST-SCANS"} {
		op, ok := lookup(name)
		assert.True(t, ok, name)
		assert.Equal(t, "list-scans", op.name)
	}

	_, ok := lookup("list")
	assert.False(t, ok)

	assert.Len(t, OperationNames(), len(operations))
}

func TestOperationArgs(t *testing.T) {
	server := newRecordingServer(t)
	dispatcher := newTestDispatcher(t, server.URL, 1)
	client := dispatcher.clients[0]

	tests := []struct {
		operation  string
		args       proto.Args
		requestURI string
	}{
		{"export-scan-format", proto.Args{"scan_id": "abc"}, "/webinspect/scanner/scans/abc.fpr"},
		{"export-scan-format", proto.Args{"scan_id": "abc", "format": "xml"}, "/webinspect/scanner/scans/abc.xml?detailType=Full"},
		{"get-scan-by-name", proto.Args{"scan_name": "nightly"}, "/webinspect/scanner/scans?Name=nightly"},
		{"start-proxy", proto.Args{"instance_id": "p-1", "port": 8080.0}, "/webinspect/proxy/"},
		{"create-wiswag", proto.Args{"swagger_url": "http://petstore.swagger.io/v2/swagger.json", "wiswag_name": "petstore"}, "/webinspect/scanner/wiswag/"},
		{"cert-proxy", proto.Args{}, "/webinspect/proxy/rootcert"},
	}

	for i, test := range tests {
		resp := dispatcher.handle(client, &proto.Request{ID: "r", Operation: test.operation, Args: test.args})
		assert.True(t, resp.Success, test.operation)
		assert.Equal(t, test.requestURI, server.requestURIs()[i])
	}
}
