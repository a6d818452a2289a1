// Package bus implements the shared signaling bundle that the CPU, RAM,
// Cartridge, Suzy and Mikey rendezvous on once per crystal tick. It carries
// no behavior of its own beyond bookkeeping a conversation token between the
// producer that last drove the bus and the consumer that must reset it to
// Status(None) once it has acted on it.
package bus

// Status is the conversation token carried on the Bus. Each tick a producer
// may advance it and a consumer resets it to None once it has handled it.
type Status int

const (
	None Status = iota
	PeekCart0
	PeekCart1
	PokeCart0
	PokeCart1
	PeekIncCartRipple
	PokeIncCartRipple
	PeekCore
	PokeCore
	Peek
	Poke
	PeekRAM
	PeekDone
	PokeDone
)

func (s Status) String() string {
	switch s {
	case None:
		return "None"
	case PeekCart0:
		return "PeekCart0"
	case PeekCart1:
		return "PeekCart1"
	case PokeCart0:
		return "PokeCart0"
	case PokeCart1:
		return "PokeCart1"
	case PeekIncCartRipple:
		return "PeekIncCartRipple"
	case PokeIncCartRipple:
		return "PokeIncCartRipple"
	case PeekCore:
		return "PeekCore"
	case PokeCore:
		return "PokeCore"
	case Peek:
		return "Peek"
	case Poke:
		return "Poke"
	case PeekRAM:
		return "PeekRAM"
	case PeekDone:
		return "PeekDone"
	case PokeDone:
		return "PokeDone"
	default:
		return "Unknown"
	}
}

// Bus is the single process-wide instance shared by every component. At most
// one of {CPU, Suzy, Mikey DMA} drives it at a time; arbitration is carried
// out via request/grant, never by locking, because the whole system steps
// cooperatively on one goroutine.
type Bus struct {
	addr    uint16
	data    byte
	status  Status
	request bool
	grant   bool
}

// New returns a Bus with the CPU holding it by default: grant=true,
// request=false.
func New() *Bus {
	return &Bus{grant: true}
}

func (b *Bus) Addr() uint16    { return b.addr }
func (b *Bus) SetAddr(a uint16) { b.addr = a }

func (b *Bus) Data() byte       { return b.data }
func (b *Bus) SetData(v byte)   { b.data = v }

func (b *Bus) Status() Status        { return b.status }
func (b *Bus) SetStatus(s Status)    { b.status = s }

// Request reports whether a DMA client is asking for the bus.
func (b *Bus) Request() bool     { return b.request }
func (b *Bus) SetRequest(v bool) { b.request = v }

// Grant reports whether the CPU has released the bus to the requester.
func (b *Bus) Grant() bool     { return b.grant }
func (b *Bus) SetGrant(v bool) { b.grant = v }

// Reset restores the bus to its power-on state: CPU owns the bus, no
// conversation in flight.
func (b *Bus) Reset() {
	b.addr = 0
	b.data = 0
	b.status = None
	b.request = false
	b.grant = true
}
