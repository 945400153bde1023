package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smallbiznis/permitdesk/internal/config"
	notificationdomain "github.com/smallbiznis/permitdesk/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/permitdesk/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type DispatcherParams struct {
	fx.In

	Lifecycle fx.Lifecycle `optional:"true"`
	Config    config.Config
	Log       *zap.Logger
	Notifier  notificationdomain.Notifier
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

// Dispatcher delivers messages on a fixed pool of workers fed by a bounded queue.
type Dispatcher struct {
	log      *zap.Logger
	notifier notificationdomain.Notifier
	metrics  *obsmetrics.Metrics
	workers  int
	timeout  time.Duration

	queue   chan notificationdomain.Message
	stop    chan struct{}
	mu      sync.RWMutex
	stopped bool
	dropped atomic.Int64
	wg      sync.WaitGroup
}

func NewDispatcher(p DispatcherParams) *Dispatcher {
	workers := p.Config.Notify.Workers
	if workers <= 0 {
		workers = 1
	}
	size := p.Config.Notify.QueueSize
	if size <= 0 {
		size = 64
	}
	timeout := p.Config.Notify.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	d := &Dispatcher{
		log:      p.Log.Named("notification.dispatcher"),
		notifier: p.Notifier,
		metrics:  p.Metrics,
		workers:  workers,
		timeout:  timeout,
		queue:    make(chan notificationdomain.Message, size),
		stop:     make(chan struct{}),
	}

	if p.Lifecycle != nil {
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(context.Context) error {
				d.Start()
				return nil
			},
			OnStop: d.Stop,
		})
	}
	return d
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	d.log.Info("dispatcher started", zap.Int("workers", d.workers), zap.Int("queue_size", cap(d.queue)))
}

// Stop lets workers drain what is already queued, bounded by ctx. Messages still
// queued once the workers exit (none were started) are counted as dropped.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.stop)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.discardPending()
		return nil
	case <-ctx.Done():
		d.log.Warn("dispatcher stop timed out", zap.Int("pending", len(d.queue)))
		return ctx.Err()
	}
}

// Enqueue never blocks. The read lock keeps a send from racing Stop.
func (d *Dispatcher) Enqueue(msg notificationdomain.Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.drop(msg, "stopped")
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.drop(msg, "queue_full")
		return false
	}
}

// Dropped reports how many messages were never handed to the notifier.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) discardPending() {
	for {
		select {
		case msg := <-d.queue:
			d.drop(msg, "stopped")
		default:
			return
		}
	}
}

func (d *Dispatcher) drop(msg notificationdomain.Message, reason string) {
	d.dropped.Add(1)
	d.log.Warn("notification dropped",
		zap.String("reason", reason),
		zap.String("method", string(msg.Method)),
		zap.String("reference", msg.Reference),
	)
	d.metrics.RecordNotification(context.Background(), string(msg.Method), "dropped")
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case msg := <-d.queue:
			d.deliver(msg)
		case <-d.stop:
			for {
				select {
				case msg := <-d.queue:
					d.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(msg notificationdomain.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.notifier.Send(ctx, msg); err != nil {
		d.log.Error("notification delivery failed",
			zap.String("method", string(msg.Method)),
			zap.String("reference", msg.Reference),
			zap.Error(err),
		)
		d.metrics.RecordNotification(ctx, string(msg.Method), "failed")
		return
	}
	d.log.Info("notification sent",
		zap.String("method", string(msg.Method)),
		zap.String("reference", msg.Reference),
	)
	d.metrics.RecordNotification(ctx, string(msg.Method), "sent")
}
