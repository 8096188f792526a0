// SPDX-License-Identifier: EPL-2.0

package control

import (
	"context"
	"time"

	"github.com/ik5/audchan/syncpoint"
)

// DefaultPoll bounds how long a Halt waits for the dispatcher to notice it.
const DefaultPoll = 10 * time.Millisecond

type request struct {
	line  string
	reply chan Reply
}

// Dispatcher funnels commands from any number of clients through a single
// goroutine. That goroutine is the primary worker of the SyncPoint: while
// the application is halted no command runs.
type Dispatcher struct {
	exec *Executor
	sp   *syncpoint.SyncPoint
	reqs chan request
	poll time.Duration
}

func NewDispatcher(exec *Executor, sp *syncpoint.SyncPoint) *Dispatcher {
	return &Dispatcher{
		exec: exec,
		sp:   sp,
		reqs: make(chan request),
		poll: DefaultPoll,
	}
}

// Run serves commands until ctx is done. Resume the SyncPoint before
// cancelling ctx if it may be halted.
func (d *Dispatcher) Run(ctx context.Context) error {
	t := time.NewTicker(d.poll)
	defer t.Stop()

	for {
		if d.sp.MainLocked() {
			d.sp.WaitMain()
		}

		select {
		case <-ctx.Done():
			return nil
		case r := <-d.reqs:
			r.reply <- d.exec.ExecLine(r.line)
		case <-t.C:
		}
	}
}

// Do runs line on the dispatcher goroutine and waits for its reply.
func (d *Dispatcher) Do(ctx context.Context, line string) (Reply, error) {
	r := request{line: line, reply: make(chan Reply, 1)}

	select {
	case d.reqs <- r:
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}

	select {
	case rep := <-r.reply:
		return rep, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}
