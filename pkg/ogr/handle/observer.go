package handle

// Ownership records whether a handle is responsible for releasing its native
// value.
type Ownership int

const (
	// Borrowed handles read through a native value owned elsewhere.
	Borrowed Ownership = iota
	// Owned handles release their native value when finalized.
	Owned
)

func (o Ownership) String() string {
	if o == Owned {
		return "owned"
	}
	return "borrowed"
}

// Trigger names what caused a handle to be finalized.
type Trigger string

const (
	TriggerDispose Trigger = "dispose"
	TriggerGC      Trigger = "gc"
)

// Observer is notified of handle lifecycle transitions. Implementations must
// be safe for concurrent use: Finalized may be called from the runtime's
// finalizer goroutine.
type Observer interface {
	Created(kind string, own Ownership, size int64)
	Finalized(kind string, own Ownership, trigger Trigger, size int64)
	ReleaseFailed(kind string, err error)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) Created(string, Ownership, int64)            {}
func (NopObserver) Finalized(string, Ownership, Trigger, int64) {}
func (NopObserver) ReleaseFailed(string, error)                 {}
