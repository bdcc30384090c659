package plan

import (
	"strings"
	"time"
)

type Key string

const (
	None    Key = "none"
	Weekly  Key = "weekly"
	Monthly Key = "monthly"
	Yearly  Key = "yearly"
)

// Unbounded marks a plan with no listing cap.
const Unbounded = -1

type Plan struct {
	Key          Key      `json:"key"`
	DisplayName  string   `json:"display_name"`
	PriceKobo    int64    `json:"price"`
	ListingQuota int      `json:"listing_quota"`
	Features     []string `json:"features"`
}

// Catalog is the immutable plan table. It is built once at startup and
// passed to whatever needs it; plans are never persisted or mutated.
type Catalog struct {
	plans map[Key]Plan
	order []Key
}

func NewCatalog() Catalog {
	plans := []Plan{
		{
			Key:          Weekly,
			DisplayName:  "Weekly",
			PriceKobo:    150000,
			ListingQuota: 9,
			Features: []string{
				"Up to 9 vehicle listings",
				"Inquiry form",
				"Email support",
			},
		},
		{
			Key:          Monthly,
			DisplayName:  "Monthly",
			PriceKobo:    500000,
			ListingQuota: 50,
			Features: []string{
				"Up to 50 vehicle listings",
				"Inquiry form",
				"Fleet update subscribers",
				"WhatsApp button",
				"Email support",
			},
		},
		{
			Key:          Yearly,
			DisplayName:  "Yearly",
			PriceKobo:    5000000,
			ListingQuota: Unbounded,
			Features: []string{
				"Unlimited vehicle listings",
				"Inquiry form",
				"Fleet update subscribers",
				"WhatsApp button",
				"Priority support",
			},
		},
	}

	c := Catalog{plans: make(map[Key]Plan, len(plans))}
	for _, p := range plans {
		c.plans[p.Key] = p
		c.order = append(c.order, p.Key)
	}
	return c
}

func (c Catalog) Get(key Key) (Plan, bool) {
	p, ok := c.plans[key]
	return p, ok
}

// QuotaFor returns the listing quota for a plan. Unknown keys and None
// map to zero; there is no error path.
func (c Catalog) QuotaFor(key Key) int {
	p, ok := c.plans[key]
	if !ok {
		return 0
	}
	return p.ListingQuota
}

func (c Catalog) PriceFor(key Key) int64 {
	p, ok := c.plans[key]
	if !ok {
		return 0
	}
	return p.PriceKobo
}

// ExpiryFrom computes the expiry for a subscription starting at start.
func (c Catalog) ExpiryFrom(key Key, start time.Time) time.Time {
	switch key {
	case Weekly:
		return start.AddDate(0, 0, 7)
	case Monthly:
		return start.AddDate(0, 1, 0)
	case Yearly:
		return start.AddDate(1, 0, 0)
	default:
		return start
	}
}

// List returns purchasable plans in catalog order.
func (c Catalog) List() []Plan {
	out := make([]Plan, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.plans[key])
	}
	return out
}

func ParseKey(value string) (Key, bool) {
	switch Key(strings.ToLower(strings.TrimSpace(value))) {
	case Weekly:
		return Weekly, true
	case Monthly:
		return Monthly, true
	case Yearly:
		return Yearly, true
	case None:
		return None, true
	default:
		return None, false
	}
}
