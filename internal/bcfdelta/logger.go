package bcfdelta

import "go.uber.org/zap"

var logger = zap.NewNop()

// SetLogger configures the package-level logger used by Encode/Decode to
// report anchor-bucket transitions (debug) and skip-problematic events
// (warn). It never affects control flow.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
