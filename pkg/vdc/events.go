package vdc

import (
	"time"

	"github.com/vdcsim/vdc-go/pkg/api"
	"github.com/vdcsim/vdc-go/pkg/log"
)

// emit reports one call to the event logger. For failed calls the event is
// filed under CategoryError with Error populated before fill runs, so fill
// may annotate it. The caller holds r.mu.
func (r *Registry) emit(op api.Operation, h Handle, err error, fill func(*log.Event)) {
	e := log.Event{
		Timestamp: time.Now(),
		SessionID: r.sessionID,
		Handle:    uint32(h),
		Operation: op,
		Result:    ResultOf(err),
		Category:  log.CategoryFor(op),
	}
	if err != nil {
		e.Category = log.CategoryError
		e.Error = &log.ErrorEventData{Message: err.Error()}
	}
	if fill != nil {
		fill(&e)
	}
	r.events.Log(e)
}
