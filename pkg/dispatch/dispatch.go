package dispatch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/webbreaker/webinspect/pkg/config"
	"github.com/webbreaker/webinspect/pkg/id"
	"github.com/webbreaker/webinspect/pkg/logger"
	"github.com/webbreaker/webinspect/pkg/proto"
	"github.com/webbreaker/webinspect/pkg/queue"
	"github.com/webbreaker/webinspect/pkg/webinspect"
)

// Dispatcher runs listen mode requests against WebInspect. Each worker has
// its own client so requests never share one.
type Dispatcher struct {
	clients   []*webinspect.Client
	ctx       context.Context
	limiter   *rate.Limiter
	queue     *queue.PriorityQueue[*proto.Request]
	responses chan *proto.Response
	started   sync.Once
	wg        sync.WaitGroup
}

// NewDispatcher builds a dispatcher with one client per configured worker.
// Call Start to begin handling requests and Close when done sending.
func NewDispatcher(ctx context.Context, cfg *config.Config) (*Dispatcher, error) {
	workers := cfg.Listen.Workers
	if workers < 1 {
		workers = 1
	}

	clients := make([]*webinspect.Client, workers)
	for i := range clients {
		client, err := webinspect.NewClient(cfg.Server.ClientConfig())
		if err != nil {
			return nil, fmt.Errorf("could not create client: %w", err)
		}
		clients[i] = client
	}

	// One limiter for every worker, the limit is per server
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Listen.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Listen.RateLimit), 1)
	}

	return &Dispatcher{
		clients:   clients,
		ctx:       ctx,
		limiter:   limiter,
		queue:     queue.NewPriorityQueue[*proto.Request](cfg.Listen.QueueSize),
		responses: make(chan *proto.Response),
	}, nil
}

// Start kicks off the workers
func (d *Dispatcher) Start() {
	d.started.Do(func() {
		for _, client := range d.clients {
			d.wg.Add(1)
			go d.listenForRequests(client)
		}
	})
}

// Send queues a request. Requests without an ID get one.
func (d *Dispatcher) Send(request *proto.Request) {
	if len(request.ID) == 0 {
		request.ID = id.ID()
	}

	logger.Debug("queueing request: request_id=%q operation=%q priority=%d", request.ID, request.Operation, request.Priority)
	d.queue.Send(&queue.Message[*proto.Request]{
		Priority: request.Priority,
		Value:    request,
	})
}

// Reject answers a request that never made it onto the queue. It must be
// called before Close.
func (d *Dispatcher) Reject(requestID string, err error) {
	resp := proto.NewErrorResponse(requestID, err)
	resp.ID = id.ID()
	d.responses <- resp
}

// Responses returns a channel that can be used for subscribing to responses.
// It has to be drained or the workers stall.
func (d *Dispatcher) Responses() <-chan *proto.Response {
	return d.responses
}

// Close stops taking requests, waits for the queued ones to finish and then
// closes the responses channel
func (d *Dispatcher) Close() error {
	d.Start()
	d.queue.Close()
	d.wg.Wait()
	close(d.responses)

	return nil
}

func (d *Dispatcher) listenForRequests(client *webinspect.Client) {
	defer d.wg.Done()

	d.queue.Recv(func(msg *queue.Message[*proto.Request]) {
		d.responses <- d.handle(client, msg.Value)
	})
}

// handle runs a single request. Bad requests get a failed response without
// anything being sent to the server.
func (d *Dispatcher) handle(client *webinspect.Client, request *proto.Request) *proto.Response {
	var resp *proto.Response

	if op, ok := lookup(request.Operation); !ok {
		logger.Error("unsupported operation: request_id=%q operation=%q", request.ID, request.Operation)
		resp = proto.NewErrorResponse(request.ID, fmt.Errorf("unsupported operation: operation=%q", request.Operation))
	} else {
		logger.Info("running operation: request_id=%q operation=%q", request.ID, op.name)

		wiResp, err := d.run(client, op, request.Args)
		if err != nil {
			logger.Error("invalid request: request_id=%q operation=%q error=%q", request.ID, op.name, err)
			resp = proto.NewErrorResponse(request.ID, err)
		} else {
			resp = proto.NewResponse(request.ID, wiResp)
		}
	}

	resp.ID = id.ID()
	return resp
}

func (d *Dispatcher) run(client *webinspect.Client, op operation, args proto.Args) (*webinspect.Response, error) {
	if err := d.limiter.Wait(d.ctx); err != nil {
		return nil, fmt.Errorf("request not sent: %w", err)
	}

	return op.run(d.ctx, client, args)
}
