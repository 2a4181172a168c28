package notif

import (
	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/logging"
	"github.com/maskserve/maskserve/internal/task"
	F "github.com/maskserve/maskserve/internal/utils/functional"
)

type Dispatcher struct {
	task      *task.Task
	msgCh     chan *Message
	providers F.Set[Provider]
}

const dispatchBufSize = 16

var logger = logging.With().Str("module", "notif").Logger()

// StartDispatcher starts a dispatcher that lives until parent is canceled.
func StartDispatcher(parent *task.Task, providers ...Provider) *Dispatcher {
	disp := &Dispatcher{
		task:      parent.Subtask("notif_dispatcher", false),
		msgCh:     make(chan *Message, dispatchBufSize),
		providers: F.NewSet[Provider](),
	}
	for _, p := range providers {
		disp.providers.Add(p)
	}
	go disp.start()
	return disp
}

// Notify queues msg for every registered provider.
//
// Messages are dropped when the queue is full.
func (disp *Dispatcher) Notify(msg *Message) {
	if disp.providers.Size() == 0 {
		return
	}
	select {
	case <-disp.task.Context().Done():
	case disp.msgCh <- msg:
	default:
		logger.Warn().Str("title", msg.Title).Msg("notification queue full, message dropped")
	}
}

func (disp *Dispatcher) start() {
	for {
		select {
		case <-disp.task.Context().Done():
			return
		case msg := <-disp.msgCh:
			go disp.dispatch(msg)
		}
	}
}

func (disp *Dispatcher) dispatch(msg *Message) {
	t := disp.task.Subtask("dispatch_notif")
	defer t.Finish("notifs dispatched")

	errs := gperr.NewBuilder("errors sending notif")
	disp.providers.RangeAllParallel(func(p Provider) {
		if err := notifyProvider(t.Context(), p, msg); err != nil {
			errs.Add(err)
		}
	})
	if err := errs.Error(); err != nil {
		gperr.LogWarn("notif dispatcher failure", err, &logger)
	}
}
