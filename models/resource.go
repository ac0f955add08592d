package models

import "time"

// Resource types.
const (
	ResourceVehicle   = "vehicle"
	ResourceBuilding  = "building"
	ResourceEquipment = "equipment"
	ResourceLand      = "land"
	ResourceOther     = "other"
)

// Resource statuses.
const (
	ResourceActive         = "active"
	ResourceMaintenance    = "maintenance"
	ResourceReserved       = "reserved"
	ResourceDecommissioned = "decommissioned"
)

// Resource is a tracked municipal object.
type Resource struct {
	ID                string        `bson:"id" json:"id"`
	Name              LocalizedText `bson:"name" json:"name"`
	Type              string        `bson:"type" json:"type"`
	InventoryNumber   string        `bson:"inventoryNumber" json:"inventoryNumber"`
	Status            string        `bson:"status" json:"status"`
	Location          string        `bson:"location,omitempty" json:"location,omitempty"`
	ResponsibleID     string        `bson:"responsibleId,omitempty" json:"responsibleId,omitempty"`
	AcquiredAt        *time.Time    `bson:"acquiredAt,omitempty" json:"acquiredAt,omitempty"`
	LastMaintenanceAt *time.Time    `bson:"lastMaintenanceAt,omitempty" json:"lastMaintenanceAt,omitempty"`
	NextMaintenanceAt *time.Time    `bson:"nextMaintenanceAt,omitempty" json:"nextMaintenanceAt,omitempty"`
	// MaintenanceNotifiedFor is the due date the responsible employee was last reminded about.
	MaintenanceNotifiedFor *time.Time `bson:"maintenanceNotifiedFor,omitempty" json:"maintenanceNotifiedFor,omitempty"`
	Value                  float64    `bson:"value" json:"value"`
	Notes                  string     `bson:"notes,omitempty" json:"notes,omitempty"`
	Timestamps             `bson:",inline"`
}

// ResourceRequest creates or replaces a resource.
type ResourceRequest struct {
	Name              LocalizedText `json:"name"`
	Type              string        `json:"type" binding:"required,oneof=vehicle building equipment land other"`
	InventoryNumber   string        `json:"inventoryNumber" binding:"required,max=64"`
	Status            string        `json:"status" binding:"omitempty,oneof=active maintenance reserved decommissioned"`
	Location          string        `json:"location" binding:"omitempty,max=300"`
	ResponsibleID     string        `json:"responsibleId"`
	AcquiredAt        *time.Time    `json:"acquiredAt"`
	NextMaintenanceAt *time.Time    `json:"nextMaintenanceAt"`
	Value             float64       `json:"value" binding:"gte=0"`
	Notes             string        `json:"notes" binding:"omitempty,max=2000"`
}

// MaintenanceRequest records a completed maintenance.
type MaintenanceRequest struct {
	PerformedAt time.Time  `json:"performedAt" binding:"required"`
	NextAt      *time.Time `json:"nextAt"`
}

// ResourceFilter narrows resource listings.
type ResourceFilter struct {
	Type          string `form:"type"`
	Status        string `form:"status"`
	ResponsibleID string `form:"responsibleId"`
	Search        string `form:"q"`
	Page
}
