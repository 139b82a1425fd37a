package auth

import "crypto/subtle"

// Policy decides whether a presented API key is allowed in. It is injected
// into the middleware so deployments (and tests) can swap the check without
// touching the routes.
type Policy interface {
	Authorize(key string) bool
}

// StaticKeyPolicy accepts exactly one shared-secret key.
type StaticKeyPolicy struct {
	key string
}

func NewStaticKeyPolicy(key string) *StaticKeyPolicy {
	return &StaticKeyPolicy{key: key}
}

func (p *StaticKeyPolicy) Authorize(key string) bool {
	if p.key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(p.key), []byte(key)) == 1
}
