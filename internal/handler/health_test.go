package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// newMockGormDB opens a GORM handle over sqlmock with ping monitoring enabled.
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	// First ping: GORM automatically pings during gorm.Open() initialization
	mock.ExpectPing()

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock, func() { mockDB.Close() }
}

// TestHealth_Success tests successful health check
func TestHealth_Success(t *testing.T) {
	t.Parallel()

	gormDB, mock, cleanup := newMockGormDB(t)
	defer cleanup()

	// Second ping: Health() verifies database connectivity
	mock.ExpectPing()

	server := &Server{DB: gormDB, startTime: time.Now().Add(-5 * time.Minute)}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "healthy", response["status"])
	assert.Contains(t, response, "timestamp")
	assert.Contains(t, response, "uptime")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestHealth_DatabaseUnavailable tests health check when database is unavailable
func TestHealth_DatabaseUnavailable(t *testing.T) {
	t.Parallel()

	gormDB, mock, cleanup := newMockGormDB(t)
	defer cleanup()

	mock.ExpectPing().WillReturnError(sql.ErrConnDone)

	server := &Server{DB: gormDB, startTime: time.Now().Add(-5 * time.Minute)}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.Health(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "unhealthy", response["status"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestHealth_NoDatabase tests health check when database is nil
func TestHealth_NoDatabase(t *testing.T) {
	t.Parallel()

	server := &Server{DB: nil, startTime: time.Now()}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "healthy", response["status"])
}

// TestHealth_UptimeCalculation tests uptime calculation
func TestHealth_UptimeCalculation(t *testing.T) {
	t.Parallel()

	gormDB, mock, cleanup := newMockGormDB(t)
	defer cleanup()

	mock.ExpectPing()

	server := &Server{DB: gormDB, startTime: time.Now().Add(-1 * time.Hour)}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	uptime, ok := response["uptime"].(string)
	require.True(t, ok)
	assert.Contains(t, uptime, "h")

	assert.NoError(t, mock.ExpectationsWereMet())
}
