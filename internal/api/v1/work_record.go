package v1

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// WorkStatus is the lifecycle tag of a work record.
type WorkStatus string

const (
	StatusPending   WorkStatus = "PENDING"
	StatusCompleted WorkStatus = "COMPLETED"
	StatusCancelled WorkStatus = "CANCELLED"
)

func (s WorkStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// WorkUnit is the unit a line item quantity is counted in.
type WorkUnit string

const (
	UnitPallet WorkUnit = "PALLET"
	UnitBox    WorkUnit = "BOX"
	UnitCase   WorkUnit = "CASE"
	UnitPiece  WorkUnit = "PIECE"
)

func (u WorkUnit) Valid() bool {
	switch u {
	case UnitPallet, UnitBox, UnitCase, UnitPiece:
		return true
	}
	return false
}

// WorkRecord is one shipment event: a distributor's pallets on a work date.
// A stored record is never edited in place; an update replaces the whole value.
type WorkRecord struct {
	// ID is assigned by the server on create and never reused.
	ID        string `json:"id" db:"id"`
	CompanyID string `json:"company_id" db:"company_id" validate:"required"`
	UserID    string `json:"user_id" db:"user_id"`

	DistributorID string `json:"distributor_id" db:"distributor_id" validate:"required"`
	// DistributorName is denormalized at write time so summaries never join the catalog.
	DistributorName string `json:"distributor_name" db:"distributor_name"`

	TotalPallets int       `json:"total_pallets" db:"total_pallets" validate:"gte=0"`
	Items        WorkItems `json:"items" db:"items" validate:"dive"`

	// WorkDate selects the monthly bucket and the daily breakdown key.
	WorkDate Date `json:"work_date" db:"work_date"`
	// WorkTime orders records within a day.
	WorkTime time.Time `json:"work_time" db:"work_time"`

	Status WorkStatus `json:"status" db:"status"`
	Notes  string     `json:"notes" db:"notes"`

	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
	CreatedBy     string    `json:"created_by" db:"created_by"`
	CreatedByName string    `json:"created_by_name" db:"created_by_name"`
	UpdatedBy     string    `json:"updated_by" db:"updated_by"`
}

// WorkItem is one line of a record.
type WorkItem struct {
	ItemName string   `json:"item_name" validate:"required"`
	Quantity int      `json:"quantity" validate:"gte=0"`
	Unit     WorkUnit `json:"unit"`
	Category string   `json:"category"`
	Notes    string   `json:"notes,omitempty"`
}

// WorkItems is stored as a JSONB array.
type WorkItems []WorkItem

func (items WorkItems) Value() (driver.Value, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}
	return b, nil
}

func (items *WorkItems) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*items = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into WorkItems", src)
	}
	if err := json.Unmarshal(raw, items); err != nil {
		return fmt.Errorf("failed to unmarshal items: %w", err)
	}
	return nil
}

// QuantitySum is the total quantity across all line items.
func (items WorkItems) QuantitySum() int {
	sum := 0
	for _, item := range items {
		sum += item.Quantity
	}
	return sum
}

// ApplyDefaults fills the status and unit defaults. It does not touch ids or audit fields.
func (r *WorkRecord) ApplyDefaults() {
	if r.Status == "" {
		r.Status = StatusCompleted
	}
	for i := range r.Items {
		if r.Items[i].Unit == "" {
			r.Items[i].Unit = UnitPallet
		}
	}
}

// Clone returns a copy that shares no slices with r.
func (r *WorkRecord) Clone() *WorkRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.Items != nil {
		out.Items = make(WorkItems, len(r.Items))
		copy(out.Items, r.Items)
	}
	return &out
}
