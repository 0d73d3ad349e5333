package node

// RegistrationState tracks where the node stands in its ledger
// registration lifecycle. Only the lifecycle controller moves it; the
// poll loop runs entirely inside Registered.
type RegistrationState int

const (
	Unregistered RegistrationState = iota
	Registering
	Registered
	Deregistering
)

func (s RegistrationState) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case Registering:
		return "registering"
	case Registered:
		return "registered"
	case Deregistering:
		return "deregistering"
	default:
		return "unknown"
	}
}
