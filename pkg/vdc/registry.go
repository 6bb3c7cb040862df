package vdc

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vdcsim/vdc-go/pkg/api"
	"github.com/vdcsim/vdc-go/pkg/log"
)

// MaxHandles is the number of instrument slots in a Registry.
const MaxHandles = 16

// Handle identifies a created instance. It is the slot index plus one.
type Handle uint32

// InvalidHandle is never returned by Create and never accepted.
const InvalidHandle Handle = 0

// slotState tracks slot occupancy.
type slotState uint8

const (
	slotFree slotState = iota
	slotCreated
)

// instance is the state of one virtual power supply.
type instance struct {
	voltage float64
	current float64

	// Limits copied from the profile at creation; never written afterwards.
	voltageSpec ParamSpec
	currentSpec ParamSpec

	outputEnabled bool
	model         string

	// uut is borrowed from the caller; nil when nothing is attached.
	uut *UUT
}

type slot struct {
	inst  instance
	state slotState
}

// Status is the output state computed by ReadStatus.
type Status struct {
	OutputState bool
	Voltage     float64
	Current     float64
	Power       float64
}

// Registry is a fixed-capacity bank of virtual DC power supplies.
//
// It is safe for concurrent use by multiple goroutines. Calls are
// serialized internally, so any single caller observes the same results as
// a strictly sequential execution.
type Registry struct {
	mu    sync.RWMutex
	slots [MaxHandles]slot

	profile   ModelProfile
	sessionID string
	events    log.Logger
	logger    *slog.Logger
}

// New creates an empty Registry. Without options it uses DefaultProfile,
// discards bench events and logs through slog.Default().
func New(opts ...Option) *Registry {
	r := &Registry{
		profile:   DefaultProfile,
		sessionID: uuid.New().String(),
		events:    log.NoopLogger{},
		logger:    defaultSlogLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SessionID returns the identifier stamped on every event of this registry.
func (r *Registry) SessionID() string {
	return r.sessionID
}

// Profile returns the model profile used by Create.
func (r *Registry) Profile() ModelProfile {
	return r.profile
}

// Capacity returns the number of slots.
func (r *Registry) Capacity() int {
	return MaxHandles
}

// Len returns the number of created instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for i := range r.slots {
		if r.slots[i].state == slotCreated {
			n++
		}
	}
	return n
}

// Handles returns the live handles in ascending order.
func (r *Registry) Handles() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var hs []Handle
	for i := range r.slots {
		if r.slots[i].state == slotCreated {
			hs = append(hs, Handle(i+1))
		}
	}
	return hs
}

// Reset destroys every instance. Attached UUTs are dropped without being
// called.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.slots {
		r.slots[i] = slot{}
	}
	r.logger.Debug("registry reset")
}

// lookup returns the instance addressed by h. The caller must hold r.mu.
func (r *Registry) lookup(h Handle) (*instance, error) {
	if h == InvalidHandle || h > MaxHandles {
		return nil, fmt.Errorf("%w: %d out of range", ErrInvalidHandle, h)
	}
	s := &r.slots[h-1]
	if s.state != slotCreated {
		return nil, fmt.Errorf("%w: %d not created", ErrInvalidHandle, h)
	}
	return &s.inst, nil
}

// Create initializes the lowest-index free slot from the registry profile
// and returns its handle. The new instance has zero setpoints, output off
// and no UUT.
func (r *Registry) Create() (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.slots {
		s := &r.slots[i]
		if s.state != slotFree {
			continue
		}

		s.inst = instance{
			voltageSpec: r.profile.Voltage,
			currentSpec: r.profile.Current,
			model:       r.profile.Name,
		}
		s.state = slotCreated

		h := Handle(i + 1)
		r.logger.Debug("instance created", slog.Uint64("handle", uint64(h)), slog.String("model", s.inst.model))
		r.emit(api.OpCreate, h, nil, func(e *log.Event) { e.Model = s.inst.model })
		return h, nil
	}

	err := fmt.Errorf("%w: all %d slots in use", ErrMaxHandlesExceeded, MaxHandles)
	r.emit(api.OpCreate, InvalidHandle, err, nil)
	return InvalidHandle, err
}

// Destroy frees the slot addressed by h. Any attached UUT is forgotten,
// not called.
func (r *Registry) Destroy(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.lookup(h)
	if err != nil {
		r.emit(api.OpDestroy, h, err, nil)
		return err
	}

	hadUUT := inst.uut != nil
	r.slots[h-1] = slot{}

	r.logger.Debug("instance destroyed", slog.Uint64("handle", uint64(h)), slog.Bool("uut_dropped", hadUUT))
	r.emit(api.OpDestroy, h, nil, nil)
	return nil
}

// Model returns the model name of the instance.
func (r *Registry) Model(h Handle) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, err := r.lookup(h)
	if err != nil {
		r.emit(api.OpGetModel, h, err, nil)
		return "", err
	}
	r.emit(api.OpGetModel, h, nil, func(e *log.Event) { e.Model = inst.model })
	return inst.model, nil
}

// ReadModel copies the NUL-terminated model name into buf and returns the
// number of bytes required, terminator included.
//
// With a nil buf it only reports the required size. If buf is shorter than
// the required size it returns ErrBufferTooSmall along with the required
// size and leaves buf untouched.
func (r *Registry) ReadModel(h Handle, buf []byte) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, err := r.lookup(h)
	if err != nil {
		r.emit(api.OpGetModel, h, err, nil)
		return 0, err
	}

	required := len(inst.model) + 1
	if buf == nil {
		r.emit(api.OpGetModel, h, nil, nil)
		return required, nil
	}
	if len(buf) < required {
		err := fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, required, len(buf))
		r.emit(api.OpGetModel, h, err, nil)
		return required, err
	}

	n := copy(buf, inst.model)
	buf[n] = 0
	r.emit(api.OpGetModel, h, nil, func(e *log.Event) { e.Model = inst.model })
	return required, nil
}

// VoltageSpec returns the voltage limits of the instance.
func (r *Registry) VoltageSpec(h Handle) (ParamSpec, error) {
	return r.spec(api.OpGetVoltageSpec, h, func(inst *instance) ParamSpec { return inst.voltageSpec })
}

// CurrentSpec returns the current limits of the instance.
func (r *Registry) CurrentSpec(h Handle) (ParamSpec, error) {
	return r.spec(api.OpGetCurrentSpec, h, func(inst *instance) ParamSpec { return inst.currentSpec })
}

func (r *Registry) spec(op api.Operation, h Handle, get func(*instance) ParamSpec) (ParamSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, err := r.lookup(h)
	if err != nil {
		r.emit(op, h, err, nil)
		return ParamSpec{}, err
	}
	r.emit(op, h, nil, nil)
	return get(inst), nil
}

// SetVoltage stores a new voltage setpoint. The value must lie within the
// instance voltage limits, bounds included. The output state is irrelevant.
func (r *Registry) SetVoltage(h Handle, v float64) error {
	return r.setSetpoint(api.OpSetVoltage, log.QuantityVoltage, h, v)
}

// SetCurrent stores a new current setpoint (the current limit). The value
// must lie within the instance current limits, bounds included.
func (r *Registry) SetCurrent(h Handle, v float64) error {
	return r.setSetpoint(api.OpSetCurrent, log.QuantityCurrent, h, v)
}

func (r *Registry) setSetpoint(op api.Operation, q log.Quantity, h Handle, v float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.lookup(h)
	if err != nil {
		r.emit(op, h, err, nil)
		return err
	}

	spec, target := inst.voltageSpec, &inst.voltage
	if q == log.QuantityCurrent {
		spec, target = inst.currentSpec, &inst.current
	}

	if !spec.Contains(v) {
		name := strings.ToLower(q.String())
		err := fmt.Errorf("%w: %s %g outside [%g, %g]",
			ErrInvalidParameter, name, v, spec.Min, spec.Max)
		r.emit(op, h, err, func(e *log.Event) {
			e.Error.Context = fmt.Sprintf("%s %g", name, v)
		})
		return err
	}

	*target = v
	r.emit(op, h, nil, func(e *log.Event) {
		e.Setpoint = &log.SetpointEvent{Quantity: q, Value: v}
	})
	return nil
}

// Voltage returns the voltage setpoint. This is the commanded value, not
// the delivered one; see ReadStatus.
func (r *Registry) Voltage(h Handle) (float64, error) {
	return r.getSetpoint(api.OpGetVoltage, log.QuantityVoltage, h)
}

// Current returns the current setpoint.
func (r *Registry) Current(h Handle) (float64, error) {
	return r.getSetpoint(api.OpGetCurrent, log.QuantityCurrent, h)
}

func (r *Registry) getSetpoint(op api.Operation, q log.Quantity, h Handle) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, err := r.lookup(h)
	if err != nil {
		r.emit(op, h, err, nil)
		return 0, err
	}

	v := inst.voltage
	if q == log.QuantityCurrent {
		v = inst.current
	}
	r.emit(op, h, nil, func(e *log.Event) {
		e.Setpoint = &log.SetpointEvent{Quantity: q, Value: v}
	})
	return v, nil
}

// SetOutputState energizes or de-energizes the output. Enabling with no
// setpoint ever written is allowed; the instance then sources 0 V.
func (r *Registry) SetOutputState(h Handle, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.lookup(h)
	if err != nil {
		r.emit(api.OpSetOutputState, h, err, nil)
		return err
	}

	inst.outputEnabled = enabled
	r.emit(api.OpSetOutputState, h, nil, func(e *log.Event) {
		e.Setpoint = &log.SetpointEvent{Quantity: log.QuantityOutput, Value: boolValue(enabled)}
	})
	return nil
}

// OutputState reports whether the output is enabled.
func (r *Registry) OutputState(h Handle) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, err := r.lookup(h)
	if err != nil {
		r.emit(api.OpGetOutputState, h, err, nil)
		return false, err
	}
	r.emit(api.OpGetOutputState, h, nil, func(e *log.Event) {
		e.Setpoint = &log.SetpointEvent{Quantity: log.QuantityOutput, Value: boolValue(inst.outputEnabled)}
	})
	return inst.outputEnabled, nil
}

// ConnectUUT attaches u to the instance. The registry keeps the pointer
// only; u stays owned by the caller. An instance holds at most one UUT, so
// a second attach fails with ErrUUTAlreadyConnected until DisconnectUUT.
func (r *Registry) ConnectUUT(h Handle, u *UUT) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.lookup(h)
	if err != nil {
		r.emit(api.OpConnectUUT, h, err, nil)
		return err
	}
	if u == nil || u.Load == nil {
		err := fmt.Errorf("%w: UUT or its load model is nil", ErrNullParameter)
		r.emit(api.OpConnectUUT, h, err, nil)
		return err
	}
	if inst.uut != nil {
		err := fmt.Errorf("%w: handle %d", ErrUUTAlreadyConnected, h)
		r.emit(api.OpConnectUUT, h, err, nil)
		return err
	}

	inst.uut = u
	r.logger.Debug("UUT connected", slog.Uint64("handle", uint64(h)), slog.String("uut", describeLoad(u.Load)))
	r.emit(api.OpConnectUUT, h, nil, func(e *log.Event) {
		e.Load = &log.LoadEvent{Connected: true, Description: describeLoad(u.Load)}
	})
	return nil
}

// DisconnectUUT detaches any UUT from the instance. Succeeds when nothing
// is attached.
func (r *Registry) DisconnectUUT(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.lookup(h)
	if err != nil {
		r.emit(api.OpDisconnectUUT, h, err, nil)
		return err
	}

	if inst.uut != nil {
		r.logger.Debug("UUT disconnected", slog.Uint64("handle", uint64(h)))
	}
	inst.uut = nil
	r.emit(api.OpDisconnectUUT, h, nil, func(e *log.Event) {
		e.Load = &log.LoadEvent{Connected: false}
	})
	return nil
}

// IsUUTConnected reports whether a UUT is attached to the instance.
func (r *Registry) IsUUTConnected(h Handle) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, err := r.lookup(h)
	if err != nil {
		r.emit(api.OpIsUUTConnected, h, err, nil)
		return false, err
	}

	connected := inst.uut != nil
	r.emit(api.OpIsUUTConnected, h, nil, func(e *log.Event) {
		e.Load = &log.LoadEvent{Connected: connected}
	})
	return connected, nil
}

// ReadStatus computes the delivered output of the instance.
//
// With the output off every value is zero. With the output on and no UUT
// the supply is unloaded: it reports the voltage setpoint and no current.
// With a UUT attached the load model decides voltage and current, called
// with the setpoints and the UUT context; power is their product.
func (r *Registry) ReadStatus(h Handle) (Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, err := r.lookup(h)
	if err != nil {
		r.emit(api.OpReadStatus, h, err, nil)
		return Status{}, err
	}

	var st Status
	loaded := false
	switch {
	case !inst.outputEnabled:
		// Everything stays zero.
	case inst.uut == nil:
		st = Status{OutputState: true, Voltage: inst.voltage}
	default:
		delivered := inst.uut.Load.Respond(Supply{Voltage: inst.voltage, Current: inst.current}, inst.uut.Context)
		st = Status{
			OutputState: true,
			Voltage:     delivered.Voltage,
			Current:     delivered.Current,
			Power:       delivered.Voltage * delivered.Current,
		}
		loaded = true
	}

	r.emit(api.OpReadStatus, h, nil, func(e *log.Event) {
		e.Status = &log.StatusEvent{
			OutputState: st.OutputState,
			Voltage:     st.Voltage,
			Current:     st.Current,
			Power:       st.Power,
			Loaded:      loaded,
		}
	})
	return st, nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// describeLoad returns the load's String form when it has one.
func describeLoad(l LoadModel) string {
	if s, ok := l.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", l)
}
