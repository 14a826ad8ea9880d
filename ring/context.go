package ring

import (
	"sync"
)

// Context owns the precomputations shared by the ring elements created from it.
// Independent contexts never share state.
type Context struct {
	ntt *NTTCache
}

// NewContext creates a new Context with an empty NTTCache.
func NewContext() *Context {
	return &Context{ntt: NewNTTCache()}
}

var (
	defaultContext     *Context
	defaultContextOnce sync.Once
)

// DefaultContext returns the Context used by ring elements created
// without an explicit Context. It is created on first use.
func DefaultContext() *Context {
	defaultContextOnce.Do(func() {
		defaultContext = NewContext()
	})
	return defaultContext
}

// NTTCache returns the NTTCache of the context.
func (ctx *Context) NTTCache() *NTTCache {
	return ctx.ntt
}

// NTTTable returns the NTTTable of the given parameters.
func (ctx *Context) NTTTable(params ElementParams) (*NTTTable, error) {
	return ctx.ntt.Get(params.modulus, params.rootOfUnity, params.cyclotomicOrder)
}

// Reset clears the precomputations of the context.
func (ctx *Context) Reset() {
	ctx.ntt.Reset()
}

// NewPoly allocates a zero Poly bound to the context.
func (ctx *Context) NewPoly(params ElementParams, format Format) *Poly {
	return newPoly(ctx, params, format)
}
