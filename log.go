package rb

import "go.uber.org/zap"

// logger returns l if non-nil, otherwise a no-op logger. Every engine type
// that accepts a *zap.Logger via its options goes through this so callers
// who don't care about logging don't have to pass one.
func logger(l *zap.Logger) *zap.Logger {
	if l != nil {
		return l
	}
	return zap.NewNop()
}
