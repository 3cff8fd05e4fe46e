package common

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Socket role
// --------------------------------------------------------------------------

// SocketRole is the messaging pattern of the outbound socket
type SocketRole int

const (
	// RolePublish fans every frame out to all subscribers (ZMQ PUB)
	RolePublish SocketRole = iota
	// RolePush hands every frame to exactly one connected puller (ZMQ PUSH)
	RolePush
)

func (r SocketRole) String() string {
	switch r {
	case RolePublish:
		return "PUB"
	case RolePush:
		return "PUSH"
	default:
		return fmt.Sprintf("SocketRole(%d)", int(r))
	}
}

// BindMode decides whether the socket listens or dials
type BindMode int

const (
	ModeBind BindMode = iota
	ModeConnect
)

func (m BindMode) String() string {
	switch m {
	case ModeBind:
		return "BIND"
	case ModeConnect:
		return "CONNECT"
	default:
		return fmt.Sprintf("BindMode(%d)", int(m))
	}
}

// WildcardMarker in an address means "all interfaces" and implies binding
const WildcardMarker = "*"

// --------------------------------------------------------------------------
// Descriptor
// --------------------------------------------------------------------------

// Descriptor is a fully resolved connection descriptor
type Descriptor struct {
	Address string
	Role    SocketRole
	Mode    BindMode
}

// Binds returns true if the socket listens on Address
func (d Descriptor) Binds() bool {
	return d.Mode == ModeBind
}

// Scheme returns the transport part of the address (e.g. "tcp")
func (d Descriptor) Scheme() string {
	scheme, _, _ := strings.Cut(d.Address, "://")
	return scheme
}

// String renders the descriptor in its canonical, fully explicit form
func (d Descriptor) String() string {
	return fmt.Sprintf("%s %s %s", d.Address, d.Role, d.Mode)
}

// keyword categories of the trailing descriptor tokens
var (
	publishTokens = map[string]bool{"PUB": true, "PUBLISH": true, "SUB": true}
	pushTokens    = map[string]bool{"PUSH": true, "PULL": true}
	modeTokens    = map[string]BindMode{"BIND": ModeBind, "CONNECT": ModeConnect}
)

// ParseDescriptor resolves a connection descriptor of the form
//
//	transport://address [PUB|PUSH] [BIND|CONNECT]
//
// The two optional tokens may appear in either order and are matched case-insensitively.
// SUB and PULL are accepted as synonyms for PUB and PUSH (the peer's view of the socket).
//
// Resolution:
//   - PUB: binds, unless CONNECT is given and the address has no wildcard
//   - PUSH: connects, unless BIND is given or the address has a wildcard
//   - no type: a wildcard address is PUB+BIND, anything else is PUSH with the
//     given mode (CONNECT by default)
//
// Any other token is a configuration error (errors.Is(err, ErrConfiguration)).
func ParseDescriptor(raw string) (Descriptor, error) {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return Descriptor{}, &DescriptorError{Input: raw, Reason: "empty descriptor"}
	}
	if len(tokens) > 3 {
		return Descriptor{}, &DescriptorError{Input: raw, Token: tokens[3], Reason: "unexpected token"}
	}

	address := tokens[0]
	if scheme, rest, ok := strings.Cut(address, "://"); !ok || scheme == "" || rest == "" {
		return Descriptor{}, &DescriptorError{Input: raw, Token: address, Reason: "address must have the form transport://endpoint, got"}
	}

	// sort the trailing tokens into their categories
	var typeToken string
	var mode *BindMode
	for _, tok := range tokens[1:] {
		upper := strings.ToUpper(tok)
		if m, ok := modeTokens[upper]; ok {
			if mode != nil {
				return Descriptor{}, &DescriptorError{Input: raw, Token: tok, Reason: "duplicate bind/connect token"}
			}
			mode = &m
			continue
		}
		if typeToken != "" {
			return Descriptor{}, &DescriptorError{Input: raw, Token: tok, Reason: "duplicate socket type token"}
		}
		typeToken = upper
	}

	wildcard := strings.Contains(address, WildcardMarker)
	explicit := func(m BindMode) bool { return mode != nil && *mode == m }

	d := Descriptor{Address: address}
	switch {
	case publishTokens[typeToken]:
		d.Role = RolePublish
		if explicit(ModeConnect) && !wildcard {
			d.Mode = ModeConnect
		} else {
			d.Mode = ModeBind
		}
	case pushTokens[typeToken]:
		d.Role = RolePush
		if explicit(ModeBind) || wildcard {
			d.Mode = ModeBind
		} else {
			d.Mode = ModeConnect
		}
	case typeToken == "":
		if wildcard {
			d.Role = RolePublish
			d.Mode = ModeBind
		} else {
			d.Role = RolePush
			if explicit(ModeBind) {
				d.Mode = ModeBind
			} else {
				d.Mode = ModeConnect
			}
		}
	default:
		return Descriptor{}, &DescriptorError{Input: raw, Token: typeToken, Reason: "unsupported socket type"}
	}

	return d, nil
}
