// Package catalog maps Kiwify product ids to the MailerLite groups and tags
// the relay maintains for them. The catalog is built once at startup from
// configuration and is read-only afterwards, so lookups are safe from any
// goroutine.
package catalog

import (
	"fmt"

	"github.com/ignite/kiwify-relay/internal/config"
)

// Product is one resolved catalog entry. Empty group or tag names mean the
// product does not participate in that list.
type Product struct {
	ID                string
	DisplayName       string
	GroupClient       string
	GroupCartRecovery string
	TagBought         string
	TagRefund         string
	TagAbandonedCart  string
	Fallback          bool
}

// defaultFallback catches unknown product ids when the configuration does not
// flag a fallback entry of its own.
var defaultFallback = Product{
	ID:                "unknown",
	DisplayName:       "Produto desconhecido",
	GroupClient:       "Clientes",
	GroupCartRecovery: "Carrinho Abandonado",
	TagBought:         "comprou",
	TagRefund:         "reembolso",
	TagAbandonedCart:  "carrinho-abandonado",
	Fallback:          true,
}

// Catalog resolves product ids to their group/tag mapping.
type Catalog struct {
	byID     map[string]Product
	fallback Product
}

// New builds a catalog from configuration entries. At most one entry may be
// flagged unknown_fallback; when none is, a built-in generic entry is used.
func New(entries []config.ProductConfig) (*Catalog, error) {
	c := &Catalog{
		byID:     make(map[string]Product, len(entries)),
		fallback: defaultFallback,
	}

	seenFallback := false
	for _, e := range entries {
		p := Product{
			ID:                e.ID,
			DisplayName:       e.DisplayName,
			GroupClient:       e.GroupClient,
			GroupCartRecovery: e.GroupCartRecovery,
			TagBought:         e.TagBought,
			TagRefund:         e.TagRefund,
			TagAbandonedCart:  e.TagAbandonedCart,
			Fallback:          e.UnknownFallback,
		}

		if p.ID != "" {
			if _, dup := c.byID[p.ID]; dup {
				return nil, fmt.Errorf("duplicate product id %q", p.ID)
			}
			c.byID[p.ID] = p
		}

		if p.Fallback {
			if seenFallback {
				return nil, fmt.Errorf("multiple products flagged unknown_fallback (%q)", p.ID)
			}
			seenFallback = true
			c.fallback = p
		}
	}

	return c, nil
}

// Resolve returns the catalog entry for a product id. Unknown ids resolve to
// the fallback entry with found=false so callers can decide whether to
// process or suppress them.
func (c *Catalog) Resolve(productID string) (Product, bool) {
	if p, ok := c.byID[productID]; ok {
		return p, true
	}
	return c.fallback, false
}

// Fallback returns the entry used for unknown product ids.
func (c *Catalog) Fallback() Product {
	return c.fallback
}

// Len returns the number of configured products, not counting the built-in
// fallback.
func (c *Catalog) Len() int {
	return len(c.byID)
}
