package bridge

import (
	"sync"
	"time"
)

// AuthLimiter locks out IPs that keep sending bad hello tokens. Each
// lockout doubles the previous one up to a ceiling.
type AuthLimiter struct {
	mu          sync.Mutex
	clients     map[string]*authState
	maxFailures int
	lockout     time.Duration
	maxLockout  time.Duration
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

type authState struct {
	failures    int
	lockouts    int
	lockedUntil time.Time
	lastSeen    time.Time
}

const (
	authSweepInterval = 5 * time.Minute
	authForgetAfter   = 10 * time.Minute
)

// NewAuthLimiter creates a limiter and starts its sweeper. Zero arguments
// fall back to 5 failures, 30s and 5m.
func NewAuthLimiter(maxFailures int, lockout, maxLockout time.Duration) *AuthLimiter {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if lockout <= 0 {
		lockout = 30 * time.Second
	}
	if maxLockout < lockout {
		maxLockout = max(lockout, 5*time.Minute)
	}

	l := &AuthLimiter{
		clients:     make(map[string]*authState),
		maxFailures: maxFailures,
		lockout:     lockout,
		maxLockout:  maxLockout,
		now:         time.Now,
		stop:        make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Stop ends the sweeper
func (l *AuthLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Locked reports whether ip is locked out and for how much longer
func (l *AuthLimiter) Locked(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.clients[ip]
	if !ok {
		return false, 0
	}
	if remaining := st.lockedUntil.Sub(l.now()); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// Fail records a bad token. It returns true and the lockout length when this
// failure starts a lockout.
func (l *AuthLimiter) Fail(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	st, ok := l.clients[ip]
	if !ok {
		st = &authState{}
		l.clients[ip] = st
	}
	st.lastSeen = now

	if remaining := st.lockedUntil.Sub(now); remaining > 0 {
		return true, remaining
	}

	st.failures++
	if st.failures < l.maxFailures {
		return false, 0
	}

	st.lockouts++
	st.failures = 0
	d := l.lockoutFor(st.lockouts)
	st.lockedUntil = now.Add(d)
	return true, d
}

// Succeed forgets an IP after a good token
func (l *AuthLimiter) Succeed(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.clients, ip)
}

// Failures returns the failures counted toward the next lockout
func (l *AuthLimiter) Failures(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok := l.clients[ip]; ok {
		return st.failures
	}
	return 0
}

// lockoutFor returns the length of the n-th lockout, n >= 1
func (l *AuthLimiter) lockoutFor(n int) time.Duration {
	d := l.lockout
	for i := 1; i < n; i++ {
		if d >= l.maxLockout/2 {
			return l.maxLockout
		}
		d *= 2
	}
	return min(d, l.maxLockout)
}

func (l *AuthLimiter) sweepLoop() {
	ticker := time.NewTicker(authSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// sweep drops IPs that are unlocked and quiet
func (l *AuthLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-authForgetAfter)
	for ip, st := range l.clients {
		if st.lockedUntil.Before(cutoff) && st.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}
