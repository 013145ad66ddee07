package initialization

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/livetesting/live-tests/framework"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Handler is implemented by initialization handlers.
type Handler interface {
	Initialize(context *InvocationContext) error
}

// Configurable is implemented by handlers that accept constructor arguments but have no
// registered HandlerFactory.
type Configurable interface {
	Configure(args []ldvalue.Value) error
}

// HandlerFactory constructs a handler from the arguments of its marker.
type HandlerFactory func(args []ldvalue.Value) (Handler, error)

// Executor constructs and runs the handlers described by Actions.
//
// A handler type is constructed by its registered HandlerFactory if there is one. Otherwise
// the Executor allocates a new zero value of the type; if the arguments are not empty, the
// pointer must implement Configurable. In both cases the pointer must implement Handler.
type Executor struct {
	factories map[reflect.Type]HandlerFactory
	logger    framework.Logger
	lock      sync.RWMutex
}

// NewExecutor creates an Executor. If logger is nil, nothing is logged.
func NewExecutor(logger framework.Logger) *Executor {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Executor{
		factories: make(map[reflect.Type]HandlerFactory),
		logger:    logger,
	}
}

// Register sets the factory for the type of handler, which is normally a zero value.
func (e *Executor) Register(handler interface{}, factory HandlerFactory) {
	t := elemType(reflect.TypeOf(handler))
	if t == nil || factory == nil {
		panic("initialization: Register needs a handler type and a factory")
	}
	e.lock.Lock()
	e.factories[t] = factory
	e.lock.Unlock()
}

// Execute runs the actions in order and stops at the first failure. The returned error
// identifies the failing action.
func (e *Executor) Execute(actions []Action) error {
	for i, a := range actions {
		state, ok := a.State.(HandlerState)
		if !ok {
			return fmt.Errorf("action %d (%s): %w: %T", i, a.ID, ErrUnsupportedState, a.State)
		}
		context, ok := a.Context.(*InvocationContext)
		if !ok || context == nil {
			return fmt.Errorf("action %d (%s): %w: context is %s", i, a.ID, ErrUnsupportedState, contextKind(a.Context))
		}
		handler, err := e.construct(state)
		if err != nil {
			return fmt.Errorf("action %d (%s): %w", i, a.ID, err)
		}
		e.logger.Printf("Running initialization handler %s %v for %s", a.ID, state.Arguments, context.Method())
		if err := handler.Initialize(context); err != nil {
			return fmt.Errorf("initialization handler %s failed: %w", a.ID, err)
		}
	}
	return nil
}

func (e *Executor) construct(state HandlerState) (Handler, error) {
	if state.Handler == nil {
		return nil, fmt.Errorf("%w: no handler type", ErrHandlerNotConstructible)
	}
	e.lock.RLock()
	factory := e.factories[state.Handler]
	e.lock.RUnlock()
	args := append([]ldvalue.Value(nil), state.Arguments...)
	if factory != nil {
		handler, err := factory(args)
		if err != nil {
			return nil, err
		}
		if handler == nil {
			return nil, fmt.Errorf("%w: factory for %s returned no handler", ErrHandlerNotConstructible, state.Handler)
		}
		return handler, nil
	}

	instance := reflect.New(state.Handler).Interface()
	handler, ok := instance.(Handler)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not implement Handler", ErrHandlerNotConstructible, state.Handler)
	}
	if len(args) == 0 {
		return handler, nil
	}
	configurable, ok := instance.(Configurable)
	if !ok {
		return nil, fmt.Errorf("%w: %s takes %d argument(s) but has no factory and is not Configurable",
			ErrHandlerNotConstructible, state.Handler, len(args))
	}
	if err := configurable.Configure(args); err != nil {
		return nil, err
	}
	return handler, nil
}
