package projection

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	httperr "github.com/logistics-lab/palletbook/internal/core/errors"
	"github.com/logistics-lab/palletbook/internal/core/storage"
	"github.com/logistics-lab/palletbook/pkg/logger"
)

// RegisterRoutes registers all read routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	company := r.Group("/v1/companies/:company_id")
	company.GET("/records", s.HandleListRecords)
	company.GET("/records/:record_id", s.HandleGetRecord)
	company.GET("/distributors/:distributor_id/records", s.HandleDistributorRecords)
	company.GET("/recent-records", s.HandleRecentRecords)
	company.GET("/summaries/:year/:month", s.HandleMonthlySummary)
	company.GET("/summaries/:year/:month/report", s.HandleMonthlyReport)
	company.GET("/dashboard", s.HandleDashboard)
}

type monthURI struct {
	CompanyID string `uri:"company_id" binding:"required"`
	Year      int    `uri:"year" binding:"required"`
	Month     int    `uri:"month" binding:"required"`
}

// HandleListRecords handles GET /v1/companies/:company_id/records
// Query parameters: date, or from and to.
func (s *Service) HandleListRecords(c *gin.Context) {
	var query struct {
		Date string `form:"date"`
		From string `form:"from"`
		To   string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		invalidQuery(c, err)
		return
	}

	companyID := c.Param("company_id")
	var (
		list *RecordList
		err  error
	)
	switch {
	case query.Date != "" && (query.From != "" || query.To != ""):
		invalidQuery(c, errors.New("date cannot be combined with from/to"))
		return
	case query.Date != "":
		var date v1.Date
		if date, err = v1.ParseDate(query.Date); err != nil {
			invalidQuery(c, err)
			return
		}
		list, err = s.RecordsByDate(c.Request.Context(), companyID, date)
	default:
		from, fromErr := v1.ParseDate(query.From)
		to, toErr := v1.ParseDate(query.To)
		if err = errors.Join(fromErr, toErr); err != nil {
			invalidQuery(c, err)
			return
		}
		list, err = s.RecordsInRange(c.Request.Context(), companyID, from, to)
	}
	if err != nil {
		writeError(c, err, "Failed to query records")
		return
	}
	c.JSON(http.StatusOK, list)
}

// HandleGetRecord handles GET /v1/companies/:company_id/records/:record_id
func (s *Service) HandleGetRecord(c *gin.Context) {
	rec, err := s.GetRecord(c.Request.Context(), c.Param("company_id"), c.Param("record_id"))
	if err != nil {
		writeError(c, err, "Failed to read record")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleDistributorRecords handles GET /v1/companies/:company_id/distributors/:distributor_id/records
func (s *Service) HandleDistributorRecords(c *gin.Context) {
	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		invalidQuery(c, err)
		return
	}

	list, err := s.RecordsByDistributor(c.Request.Context(), c.Param("company_id"), c.Param("distributor_id"), query.Limit)
	if err != nil {
		writeError(c, err, "Failed to query records")
		return
	}
	c.JSON(http.StatusOK, list)
}

// HandleRecentRecords handles GET /v1/companies/:company_id/recent-records
func (s *Service) HandleRecentRecords(c *gin.Context) {
	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		invalidQuery(c, err)
		return
	}

	list, err := s.RecentRecords(c.Request.Context(), c.Param("company_id"), query.Limit)
	if err != nil {
		writeError(c, err, "Failed to query records")
		return
	}
	c.JSON(http.StatusOK, list)
}

// HandleMonthlySummary handles GET /v1/companies/:company_id/summaries/:year/:month
func (s *Service) HandleMonthlySummary(c *gin.Context) {
	var uri monthURI
	if err := c.ShouldBindUri(&uri); err != nil {
		invalidQuery(c, err)
		return
	}

	doc, err := s.MonthlySummary(c.Request.Context(), uri.CompanyID, uri.Year, uri.Month)
	if err != nil {
		writeError(c, err, "Failed to read monthly summary")
		return
	}
	c.JSON(http.StatusOK, doc)
}

// HandleMonthlyReport handles GET /v1/companies/:company_id/summaries/:year/:month/report
func (s *Service) HandleMonthlyReport(c *gin.Context) {
	var uri monthURI
	if err := c.ShouldBindUri(&uri); err != nil {
		invalidQuery(c, err)
		return
	}

	report, err := s.MonthlyReport(c.Request.Context(), uri.CompanyID, uri.Year, uri.Month)
	if err != nil {
		writeError(c, err, "Failed to build monthly report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleDashboard handles GET /v1/companies/:company_id/dashboard
// Query parameters: date (defaults to today).
func (s *Service) HandleDashboard(c *gin.Context) {
	var date v1.Date
	if raw := c.Query("date"); raw != "" {
		parsed, err := v1.ParseDate(raw)
		if err != nil {
			invalidQuery(c, err)
			return
		}
		date = parsed
	}

	dash, err := s.Dashboard(c.Request.Context(), c.Param("company_id"), date)
	if err != nil {
		writeError(c, err, "Failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, dash)
}

func invalidQuery(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidQueryError,
		Message:   "Invalid query parameters",
		Details:   err.Error(),
	})
}

func writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidQuery):
		invalidQuery(c, err)
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpRecordNotFoundError,
			Message:   "Work record not found",
		})
	default:
		logger.Error(c.Request.Context(), "[Projection] "+message, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   message,
		})
	}
}
