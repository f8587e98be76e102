package projection

import (
	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/logistics-lab/palletbook/internal/core/summary"
	"github.com/shopspring/decimal"
)

// RecordList is the response shape of every record query.
type RecordList struct {
	CompanyID string           `json:"company_id"`
	Count     int              `json:"count"`
	Records   []*v1.WorkRecord `json:"records"`
}

// DailyPoint is one calendar day of a monthly report.
type DailyPoint struct {
	Date         string `json:"date"`
	TotalPallets int    `json:"total_pallets"`
	RecordCount  int    `json:"record_count"`
}

// CategoryShare is a category's slice of the month.
type CategoryShare struct {
	Category         string          `json:"category"`
	TotalPallets     int             `json:"total_pallets"`
	LineCount        int             `json:"line_count"`
	DistributorCount int             `json:"distributor_count"`
	TopItems         []string        `json:"top_items"`
	SharePercent     decimal.Decimal `json:"share_percent"`
}

// MonthlyReport is a summary plus the rankings and series derived from it.
type MonthlyReport struct {
	Summary                 *summary.MonthlySummary `json:"summary"`
	TopDistributors         []summary.Ranked        `json:"top_distributors"`
	TopItems                []summary.Ranked        `json:"top_items"`
	Daily                   []DailyPoint            `json:"daily"`
	Categories              []CategoryShare         `json:"categories"`
	AveragePalletsPerRecord decimal.Decimal         `json:"average_pallets_per_record"`
}

// DayTotals is what was shipped on one day.
type DayTotals struct {
	TotalPallets int `json:"total_pallets"`
	RecordCount  int `json:"record_count"`
}

// MonthTotals is the headline of a monthly summary.
type MonthTotals struct {
	Year               int `json:"year"`
	Month              int `json:"month"`
	TotalPallets       int `json:"total_pallets"`
	TotalRecords       int `json:"total_records"`
	ActiveDistributors int `json:"active_distributors"`
}

// Dashboard is the landing view of a company for one day.
type Dashboard struct {
	CompanyID               string           `json:"company_id"`
	Date                    v1.Date          `json:"date"`
	Today                   DayTotals        `json:"today"`
	Month                   MonthTotals      `json:"month"`
	RecentRecords           []*v1.WorkRecord `json:"recent_records"`
	TopDistributors         []summary.Ranked `json:"top_distributors"`
	TopItems                []summary.Ranked `json:"top_items"`
	AveragePalletsPerRecord decimal.Decimal  `json:"average_pallets_per_record"`
}
