package remote

import (
	"context"
	"fmt"

	opentracing "github.com/opentracing/opentracing-go"
	otlog "github.com/opentracing/opentracing-go/log"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// TaskFunc is the work done on one host.
type TaskFunc func(ctx context.Context, ex Executor) error

// Group runs a task across a set of hosts.
type Group struct {
	dialer      Dialer
	parallelism int
}

func NewGroup(d Dialer, parallelism int) *Group {
	if parallelism < 1 {
		parallelism = 1
	}

	return &Group{dialer: d, parallelism: parallelism}
}

func (g *Group) Dialer() Dialer {
	return g.dialer
}

// On dials host, runs fn and closes the connection.
func (g *Group) On(ctx context.Context, host string, fn TaskFunc) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "remote.host")
	defer span.Finish()
	span.SetTag("host", host)

	ex, err := g.dialer.Dial(ctx, host)
	if err != nil {
		span.LogFields(otlog.Error(err))
		return err
	}
	defer ex.Close()

	if err := fn(ctx, ex); err != nil {
		span.LogFields(otlog.Error(err))
		return fmt.Errorf("%s: %w", host, err)
	}

	return nil
}

// Each runs fn on every host. Sequential runs stop at the first failing host.
// Parallel runs keep at most the group's parallelism in flight, cancel the
// rest on the first failure and return that failure.
func (g *Group) Each(ctx context.Context, hosts []string, parallel bool, fn TaskFunc) error {
	if !parallel {
		for _, host := range hosts {
			if err := g.On(ctx, host, fn); err != nil {
				return err
			}
		}
		return nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelism)

	for _, host := range hosts {
		host := host
		eg.Go(func() error {
			log.Debugf("starting task on %s", host)
			return g.On(ctx, host, fn)
		})
	}

	return eg.Wait()
}
