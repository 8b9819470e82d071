package metrics

import (
	"github.com/san-kum/droptower/internal/particles"
	"github.com/san-kum/droptower/internal/sim"
)

type ContactKind int

const (
	WallContacts ContactKind = iota
	PairContacts
)

// Contacts counts resolved collisions of one kind over a run.
type Contacts struct {
	kind  ContactKind
	count int
}

func NewContacts(kind ContactKind) *Contacts { return &Contacts{kind: kind} }

func (c *Contacts) Name() string {
	if c.kind == PairContacts {
		return "pair_contacts"
	}
	return "wall_contacts"
}

func (c *Contacts) Observe(_ *particles.System, tick sim.Tick) {
	if c.kind == PairContacts {
		c.count += tick.PairContacts
		return
	}
	c.count += tick.WallContacts
}

func (c *Contacts) Value() float64 { return float64(c.count) }
func (c *Contacts) Reset()         { c.count = 0 }
