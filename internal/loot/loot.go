// Package loot rolls generated items: a weighted rarity draw, a base
// item picked from the acquisition channel's pool, and a rarity suffix
// folded into the display name.
package loot

import (
	"math"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"coinclass/internal/catalog"

	"github.com/google/uuid"
)

// Item is a unique generated instance. It lives in exactly one
// inventory or one open marketplace listing at a time.
type Item struct {
	UUID       string           `json:"uuid"`
	BaseID     string           `json:"base_id"`
	Name       string           `json:"name"`
	Rarity     catalog.Rarity   `json:"rarity"`
	Type       catalog.ItemType `json:"type"`
	Icon       string           `json:"icon"`
	ValueCents int64            `json:"value_cents"`
}

// Source supplies the uniform draws the generator consumes. Satisfied
// by *mathrand.Rand; tests inject fixed sequences.
type Source interface {
	Float64() float64
}

type Generator struct {
	mu  sync.Mutex
	src Source
}

func NewGenerator(src Source) *Generator {
	if src == nil {
		src = mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{src: src}
}

func (g *Generator) next() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.src.Float64()
}

// Generate rolls one item for the given channel. A non-empty force
// skips the rarity draw. Returns false when no pool is available, which
// with the shipped catalog cannot happen for any known channel.
func (g *Generator) Generate(force catalog.Rarity, channel catalog.Channel) (Item, bool) {
	pool := catalog.PoolFor(channel)
	if len(pool) == 0 {
		pool = catalog.PoolFor(catalog.ChannelDrop)
	}
	if len(pool) == 0 {
		return Item{}, false
	}
	base := pool[g.pick(len(pool))]

	rarity := force
	if rarity == "" {
		rarity = RollRarity(g.next())
	}

	suffixes := catalog.SuffixesFor(rarity)
	var name string
	if len(suffixes) == 0 {
		name = base.Name
	} else {
		suffix := suffixes[g.pick(len(suffixes))]
		name = ComposeName(base.Name, suffix)
	}

	return Item{
		UUID:       uuid.NewString(),
		BaseID:     base.ID,
		Name:       name,
		Rarity:     rarity,
		Type:       base.Type,
		Icon:       base.Icon,
		ValueCents: ItemValueCents(base.PriceCents, rarity),
	}, true
}

func (g *Generator) pick(n int) int {
	idx := int(g.next() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// RollRarity maps one uniform draw in [0,1) to a tier by cumulative
// thresholds, rarest first.
func RollRarity(draw float64) catalog.Rarity {
	var cum float64
	for _, r := range catalog.RarityOrder {
		if r == catalog.Common {
			break
		}
		cum += catalog.Rarities[r].Chance
		if draw < cum {
			return r
		}
	}
	return catalog.Common
}

// ComposeName joins the base name and suffix. A base name that already
// contains " of " takes the adjective form as a prefix instead, so
// "Scroll of Truth" becomes "Golden Scroll of Truth" rather than
// "Scroll of Truth of Gold".
func ComposeName(baseName string, suffix catalog.Suffix) string {
	if suffix.Name == "" {
		return baseName
	}
	if strings.Contains(baseName, " of ") && suffix.Adj != "" {
		return suffix.Adj + " " + baseName
	}
	return baseName + " " + suffix.Name
}

// ItemValueCents is floor(base price x rarity multiplier).
func ItemValueCents(priceCents int64, rarity catalog.Rarity) int64 {
	tier, ok := catalog.Rarities[rarity]
	if !ok {
		return priceCents
	}
	return int64(math.Floor(float64(priceCents) * tier.Multiplier))
}
