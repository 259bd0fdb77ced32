package engine

import (
	"go.uber.org/zap"
)

// Session owns the per-wallet-session caches and their invalidation. It is
// the explicit replacement for cross-render global state: the UI constructs
// one Session after wallet connect and wires the wallet collaborator's
// chain-change and account-change events to the handlers below.
//
// All blockchain-facing calls are serialized by the caller (one in-flight
// operation per session), so no locking is needed around the caches.
type Session struct {
	Network    *NetworkResolver
	Allowances *AllowanceManager

	log *zap.Logger
}

// NewSession groups a resolver and allowance manager into one session scope
func NewSession(network *NetworkResolver, allowances *AllowanceManager, log *zap.Logger) *Session {
	return &Session{
		Network:    network,
		Allowances: allowances,
		log:        log,
	}
}

// OnChainChanged invalidates everything keyed by the network. The caller is
// expected to reload dependent state afterwards.
func (s *Session) OnChainChanged() {
	s.log.Info("chain changed, invalidating session caches")
	s.Network.Invalidate()
	s.Allowances.InvalidateAll()
}

// OnAccountChanged invalidates owner-keyed state; network addresses stay
func (s *Session) OnAccountChanged() {
	s.log.Info("account changed, invalidating allowance cache")
	s.Allowances.InvalidateAll()
}
