package rb

import "sync"

// CoalesceRule describes how a single-key command folds into a multi-key
// batched command: BatchName is the command to send instead, and
// ListResponse says whether the batched response is a per-item list (scatter
// element-wise to the original promises) or a single scalar (broadcast to
// every original promise). ArgCount, when nonzero, limits fusing to commands
// with exactly that many arguments; any other form passes through unchanged.
type CoalesceRule struct {
	BatchName    string
	ListResponse bool
	ArgCount     int
}

var (
	coalesceMu    sync.RWMutex
	coalesceTable = map[string]CoalesceRule{
		"GET": {BatchName: "MGET", ListResponse: true, ArgCount: 1},
		"SET": {BatchName: "MSET", ListResponse: false, ArgCount: 2},
	}
)

// RegisterCoalesceRule adds or replaces a coalescing rule for commandName.
// The table is data, not code, precisely so new command families can be
// added without touching the fusing algorithm in coalesceCommands.
func RegisterCoalesceRule(commandName string, rule CoalesceRule) {
	coalesceMu.Lock()
	defer coalesceMu.Unlock()
	coalesceTable[commandName] = rule
}

func lookupCoalesceRule(commandName string) (CoalesceRule, bool) {
	coalesceMu.RLock()
	defer coalesceMu.RUnlock()
	rule, ok := coalesceTable[commandName]
	return rule, ok
}

// coalesceCommands walks a queue of triples in enqueue order and fuses
// consecutive runs of the same coalescible command name into one batched
// command. Non-coalescible commands, and boundaries between different
// coalescible names, pass straight through unchanged; ordering of distinct
// commands is always preserved. A run of length one is emitted as the
// original command with its original promise - no batch wrapper and no
// extra promise indirection.
func coalesceCommands(commands []triple) ([]triple, int) {
	out := make([]triple, 0, len(commands))
	fused := 0

	var pendingName string
	var pendingGroup []triple

	flush := func() {
		if len(pendingGroup) == 0 {
			return
		}
		if len(pendingGroup) > 1 {
			fused++
		}
		out = append(out, mergeBatch(pendingName, pendingGroup))
		pendingGroup = nil
	}

	for _, t := range commands {
		if rule, ok := lookupCoalesceRule(t.name); !ok || (rule.ArgCount != 0 && len(t.args) != rule.ArgCount) {
			flush()
			out = append(out, t)
			continue
		}

		if pendingGroup != nil && pendingName == t.name {
			pendingGroup = append(pendingGroup, t)
			continue
		}

		flush()
		pendingName = t.name
		pendingGroup = []triple{t}
	}
	flush()

	return out, fused
}

// mergeBatch turns a run of same-named triples into either the lone
// original command (group of one) or a single batched command whose
// resolution scatters or broadcasts back to the group's original promises.
func mergeBatch(commandName string, group []triple) triple {
	rule, _ := lookupCoalesceRule(commandName)

	if len(group) == 1 {
		return group[0]
	}

	group = append([]triple(nil), group...)
	batchPromise := NewPromise[any]()

	batchPromise.OnSuccess(func(value any) {
		if rule.ListResponse {
			items, ok := value.([]any)
			if !ok {
				err := ErrProtocol
				for _, g := range group {
					g.promise.Reject(err)
				}
				return
			}
			for i, g := range group {
				if i < len(items) {
					g.promise.Resolve(items[i])
				} else {
					g.promise.Reject(ErrProtocol)
				}
			}
			return
		}
		for _, g := range group {
			g.promise.Resolve(value)
		}
	})
	batchPromise.OnFailure(func(err error) {
		for _, g := range group {
			g.promise.Reject(err)
		}
	})

	var args [][]byte
	for _, g := range group {
		args = append(args, g.args...)
	}

	return triple{name: rule.BatchName, args: args, promise: batchPromise}
}
