package rb

import "strings"

// HostId identifies a single backend server in the cluster. It is opaque to
// the engine beyond being comparable and hashable, exactly as the router and
// cluster collaborators produce and consume it.
type HostId string

// AllHosts is the sentinel target set recognised by FanoutClient meaning
// "every host currently known to the cluster". Pass []HostId{AllHosts} as
// the target list to RoutingClient.Fanout to request it.
const AllHosts HostId = "all"

// Command is a single Redis-style command: an upper-cased name and an
// ordered list of opaque byte-string arguments.
type Command struct {
	Name string
	Args [][]byte
}

// NewCommand upper-cases name and wraps the arguments into a Command. The
// clients' Execute methods build their commands with it, so callers may
// pass names in any case.
func NewCommand(name string, args ...[]byte) Command {
	return Command{Name: strings.ToUpper(name), Args: args}
}

// Args1 is a convenience for turning a string into one command argument,
// used pervasively by callers issuing GET-style commands.
func Args1(s string) []byte { return []byte(s) }

type triple struct {
	name    string
	args    [][]byte
	promise *Promise[any]
}
