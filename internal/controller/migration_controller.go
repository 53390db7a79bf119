package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"nexus-migrator/internal/middleware"
	"nexus-migrator/internal/migrator"
	"nexus-migrator/pkg/response"
)

type MigrationController struct {
	service *migrator.Service
}

func NewMigrationController(service *migrator.Service) *MigrationController {
	return &MigrationController{
		service: service,
	}
}

// ListConnections returns the names of all configured connections.
func (mc *MigrationController) ListConnections(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)
	c.JSON(http.StatusOK, response.SuccessResponse(gin.H{
		"connections":   mc.service.ConnectionNames(),
		"table_mapping": mc.service.TableMapping(),
	}, correlationID))
}

// GetSchemaDiff returns the raw structural diff for one connection.
func (mc *MigrationController) GetSchemaDiff(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)

	m, err := mc.service.Migrator(c.Param("connection"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundResponse(err.Error(), correlationID))
		return
	}

	start := time.Now()
	diff, err := m.GetSchemaDiff(c.Request.Context())
	if err != nil {
		middleware.RecordDiff(m.ConnectionName(), "error", time.Since(start))
		c.JSON(http.StatusInternalServerError, response.ErrorResponse(
			"DIFF_FAILED",
			"Failed to compute schema diff: "+err.Error(),
			"",
			correlationID,
		))
		return
	}
	middleware.RecordDiff(m.ConnectionName(), "success", time.Since(start))
	middleware.RecordDiffTables(m.ConnectionName(),
		len(diff.NewTables), len(diff.ChangedTables), len(diff.RemovedTables))

	c.JSON(http.StatusOK, response.SuccessResponse(diff, correlationID))
}

// GetUpdateSuggestions returns hash addressed statement suggestions for one
// connection. The remove query flag switches to destructive candidates.
func (mc *MigrationController) GetUpdateSuggestions(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)

	remove, err := parseBoolQuery(c, "remove")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse(
			"INVALID_REQUEST",
			"Invalid remove parameter: "+err.Error(),
			"",
			correlationID,
		))
		return
	}

	m, err := mc.service.Migrator(c.Param("connection"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundResponse(err.Error(), correlationID))
		return
	}

	start := time.Now()
	suggestions, err := m.GetUpdateSuggestions(c.Request.Context(), remove)
	if err != nil {
		middleware.RecordDiff(m.ConnectionName(), "error", time.Since(start))
		c.JSON(http.StatusInternalServerError, response.ErrorResponse(
			"DIFF_FAILED",
			"Failed to compute update suggestions: "+err.Error(),
			"",
			correlationID,
		))
		return
	}
	middleware.RecordDiff(m.ConnectionName(), "success", time.Since(start))

	c.JSON(http.StatusOK, response.SuccessResponse(suggestions, correlationID))
}

// Install applies the additive statements for one connection and reports the
// outcome per statement.
func (mc *MigrationController) Install(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)

	createOnly, err := parseBoolQuery(c, "createOnly")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse(
			"INVALID_REQUEST",
			"Invalid createOnly parameter: "+err.Error(),
			"",
			correlationID,
		))
		return
	}

	m, err := mc.service.Migrator(c.Param("connection"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundResponse(err.Error(), correlationID))
		return
	}

	start := time.Now()
	results, err := m.Install(c.Request.Context(), createOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse(
			"INSTALL_FAILED",
			"Failed to install schema updates: "+err.Error(),
			"",
			correlationID,
		))
		return
	}

	applied, failed := 0, 0
	for _, message := range results {
		if message == "" {
			applied++
		} else {
			failed++
		}
	}
	middleware.RecordInstall(m.ConnectionName(), time.Since(start), applied, failed)

	c.JSON(http.StatusOK, response.SuccessResponse(gin.H{
		"statements": results,
	}, correlationID))
}

func parseBoolQuery(c *gin.Context, name string) (bool, error) {
	value := c.Query(name)
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}
