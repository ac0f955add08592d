package models

// CountBy is one bucket of a grouped count.
type CountBy struct {
	Key   string `bson:"_id" json:"key"`
	Count int64  `bson:"count" json:"count"`
}

// MonthlyCount is the number of records created in a calendar month (YYYY-MM).
type MonthlyCount struct {
	Month string `bson:"_id" json:"month"`
	Count int64  `bson:"count" json:"count"`
}

// EmployeeDashboard is the staff overview.
type EmployeeDashboard struct {
	AppealsByStatus    []CountBy      `json:"appealsByStatus"`
	AppealsByCategory  []CountBy      `json:"appealsByCategory"`
	AppealsByPriority  []CountBy      `json:"appealsByPriority"`
	AppealsPerMonth    []MonthlyCount `json:"appealsPerMonth"`
	AvgResolutionHours float64        `json:"avgResolutionHours"`
	OpenAppeals        int64          `json:"openAppeals"`
	ResourcesByStatus  []CountBy      `json:"resourcesByStatus"`
	ResourcesByType    []CountBy      `json:"resourcesByType"`
	MaintenanceDueSoon int64          `json:"maintenanceDueSoon"`
	ServicesByStatus   []CountBy      `json:"servicesByStatus"`
	DocumentsTotal     int64          `json:"documentsTotal"`
	PublishedNews      int64          `json:"publishedNews"`
	LatestAppeals      []Appeal       `json:"latestAppeals"`
}

// ResidentDashboard is the resident overview.
type ResidentDashboard struct {
	AppealsByStatus     []CountBy `json:"appealsByStatus"`
	LatestAppeals       []Appeal  `json:"latestAppeals"`
	UnreadNotifications int64     `json:"unreadNotifications"`
	LatestNews          []News    `json:"latestNews"`
}

// BroadcastPayload is the queued fan-out task body. ID stays fixed across retries.
type BroadcastPayload struct {
	ID       string            `json:"id"`
	Audience string            `json:"audience"`
	Type     string            `json:"type"`
	Title    LocalizedText     `json:"title"`
	Body     LocalizedText     `json:"body"`
	Link     string            `json:"link,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

// MaintenanceScanPayload is the periodic maintenance scan task body.
type MaintenanceScanPayload struct {
	LookaheadDays int `json:"lookaheadDays"`
}
