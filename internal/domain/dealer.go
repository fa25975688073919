package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DealerStatus is the lifecycle state of a dealer account.
type DealerStatus string

const (
	DealerActive      DealerStatus = "Active"
	DealerPending     DealerStatus = "Pending"
	DealerProspect    DealerStatus = "Prospect"
	DealerInactive    DealerStatus = "Inactive"
	DealerBlackListed DealerStatus = "Black Listed"
)

// DealerStatuses lists every status in display order.
var DealerStatuses = []DealerStatus{
	DealerActive,
	DealerPending,
	DealerProspect,
	DealerInactive,
	DealerBlackListed,
}

// Valid reports whether s is one of the fixed statuses.
func (s DealerStatus) Valid() bool {
	for _, known := range DealerStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// TriState is a yes/no/unknown value. It marshals to true, false and null.
type TriState int8

const (
	Unknown TriState = iota
	Yes
	No
)

func (t TriState) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	}
	return "unknown"
}

// TriFromBool converts an optional bool into a TriState.
func TriFromBool(b *bool) TriState {
	if b == nil {
		return Unknown
	}
	if *b {
		return Yes
	}
	return No
}

// Bool returns the tri-state as an optional bool.
func (t TriState) Bool() *bool {
	switch t {
	case Yes:
		v := true
		return &v
	case No:
		v := false
		return &v
	}
	return nil
}

func (t TriState) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Bool())
}

func (t *TriState) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Unknown
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*t = TriFromBool(&b)
	return nil
}

// NoDealReasons records why a dealer is not sending deals. It is only
// meaningful while SendingDeals is No.
type NoDealReasons struct {
	Funding      bool   `json:"funding"`
	Pricing      bool   `json:"pricing"`
	Competitor   bool   `json:"competitor"`
	Inventory    bool   `json:"inventory"`
	Relationship bool   `json:"relationship"`
	Process      bool   `json:"process"`
	Other        string `json:"other,omitempty"`
}

// Reason keys in display order; "other" is last.
const (
	ReasonFunding      = "funding"
	ReasonPricing      = "pricing"
	ReasonCompetitor   = "competitor"
	ReasonInventory    = "inventory"
	ReasonRelationship = "relationship"
	ReasonProcess      = "process"
	ReasonOther        = "other"
)

var ReasonKeys = []string{
	ReasonFunding,
	ReasonPricing,
	ReasonCompetitor,
	ReasonInventory,
	ReasonRelationship,
	ReasonProcess,
	ReasonOther,
}

// Present returns the keys of the reasons that are set.
func (r NoDealReasons) Present() []string {
	var keys []string
	flags := []bool{r.Funding, r.Pricing, r.Competitor, r.Inventory, r.Relationship, r.Process, r.Other != ""}
	for i, set := range flags {
		if set {
			keys = append(keys, ReasonKeys[i])
		}
	}
	return keys
}

// Dealer is a dealer account tracked by the portal.
type Dealer struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Region      string       `json:"region"`
	Type        string       `json:"type"`
	Status      DealerStatus `json:"status"`
	Phone       string       `json:"phone,omitempty"`
	ContactName string       `json:"contact_name,omitempty"`

	// AssignedRepUsername is an explicit rep override. Empty means the
	// dealer is attributed by state/region coverage.
	AssignedRepUsername string `json:"assigned_rep_username,omitempty"`

	LastVisited   *time.Time    `json:"last_visited,omitempty"`
	SendingDeals  TriState      `json:"sending_deals"`
	NoDealReasons NoDealReasons `json:"no_deal_reasons"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasOverride reports whether an explicit rep is assigned.
func (d Dealer) HasOverride() bool {
	return d.AssignedRepUsername != ""
}

// Clone returns a copy that shares no pointers with d.
func (d Dealer) Clone() Dealer {
	c := d
	if d.LastVisited != nil {
		lv := *d.LastVisited
		c.LastVisited = &lv
	}
	return c
}
