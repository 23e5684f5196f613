package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/finaurial/finance-tracker/internal/auth"
	"github.com/finaurial/finance-tracker/internal/handler"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/finaurial/finance-tracker/internal/repository"
	"github.com/finaurial/finance-tracker/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count"`
	Total   *int            `json:"total"`
	Token   string          `json:"token"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// RouterTestSuite drives the full HTTP stack over the in-memory store
type RouterTestSuite struct {
	suite.Suite
	svc        *service.Service
	server     http.Handler
	userToken  string
	adminToken string
	userID     string
}

func (suite *RouterTestSuite) SetupTest() {
	log := logrus.New()
	log.SetOutput(io.Discard)

	suite.svc = service.NewService(repository.NewMemoryRepository(), log, service.Dependencies{
		Tokens: auth.NewIssuer("router-secret"),
	})
	suite.server = New(handler.NewHandler(suite.svc, log), suite.svc, log, Options{
		CORSOrigin:     "*",
		RequestTimeout: 5 * time.Second,
	})

	ctx := context.Background()
	user, err := suite.svc.CreateUser(ctx, "alice", "alice@example.com", "secret123", models.RoleUser)
	require.NoError(suite.T(), err)
	suite.userID = user.ID.String()
	_, err = suite.svc.CreateUser(ctx, "root", "root@example.com", "secret123", models.RoleAdmin)
	require.NoError(suite.T(), err)

	suite.userToken = suite.login("alice@example.com")
	suite.adminToken = suite.login("root@example.com")
}

func (suite *RouterTestSuite) login(email string) string {
	rec, env := suite.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "secret123"})
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	require.NotEmpty(suite.T(), env.Token)
	return env.Token
}

func (suite *RouterTestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	rec := httptest.NewRecorder()
	suite.server.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (suite *RouterTestSuite) TestHealthAndRequestID() {
	rec, env := suite.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.True(suite.T(), env.Success)
	assert.NotEmpty(suite.T(), rec.Header().Get("X-Request-ID"))
}

func (suite *RouterTestSuite) TestMissingTokenIsUnauthorized() {
	rec, env := suite.do(http.MethodGet, "/api/transactions", "", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
	assert.False(suite.T(), env.Success)
	assert.Equal(suite.T(), "No token, authorization denied", env.Error)

	rec, _ = suite.do(http.MethodGet, "/api/transactions", "not-a-jwt", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *RouterTestSuite) TestBearerHeaderAccepted() {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+suite.userToken)
	rec := httptest.NewRecorder()
	suite.server.ServeHTTP(rec, req)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), "alice@example.com")
	assert.NotContains(suite.T(), rec.Body.String(), "secret123")
}

func (suite *RouterTestSuite) TestAdminGuard() {
	rec, env := suite.do(http.MethodPost, "/api/admin/features", suite.userToken, map[string]string{"name": "Beta"})
	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)
	assert.False(suite.T(), env.Success)

	rec, _ = suite.do(http.MethodGet, "/api/admin/users", suite.userToken, nil)
	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)

	rec, _ = suite.do(http.MethodGet, "/api/admin/features", suite.userToken, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	rec, env = suite.do(http.MethodPost, "/api/admin/features", suite.adminToken, map[string]string{"name": "Beta"})
	assert.Equal(suite.T(), http.StatusCreated, rec.Code)
	assert.True(suite.T(), env.Success)

	rec, env = suite.do(http.MethodGet, "/api/admin/users", suite.adminToken, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	require.NotNil(suite.T(), env.Count)
	assert.Equal(suite.T(), 2, *env.Count)
}

func (suite *RouterTestSuite) TestSuspendedUserRefused() {
	rec, _ := suite.do(http.MethodPut, "/api/admin/users/"+suite.userID+"/suspend", suite.adminToken, nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	rec, env := suite.do(http.MethodGet, "/api/auth/me", suite.userToken, nil)
	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)
	assert.Equal(suite.T(), "Access denied: account is suspended", env.Error)
}

func (suite *RouterTestSuite) TestTransactionLifecycle() {
	rec, env := suite.do(http.MethodPost, "/api/transactions", suite.userToken, map[string]interface{}{
		"type": "expense", "category": "Food", "amount": 12.5, "date": "2024-01-06",
	})
	require.Equal(suite.T(), http.StatusCreated, rec.Code)
	var tx models.Transaction
	require.NoError(suite.T(), json.Unmarshal(env.Data, &tx))

	rec, env = suite.do(http.MethodGet, "/api/transactions?type=expense&limit=5", suite.userToken, nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	require.NotNil(suite.T(), env.Count)
	require.NotNil(suite.T(), env.Total)
	assert.Equal(suite.T(), 1, *env.Count)
	assert.Equal(suite.T(), 1, *env.Total)

	rec, _ = suite.do(http.MethodPut, "/api/transactions/"+tx.ID.String(), suite.adminToken, map[string]interface{}{
		"type": "expense", "category": "Food", "amount": 20,
	})
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	rec, env = suite.do(http.MethodDelete, "/api/transactions/"+tx.ID.String(), suite.userToken, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `{}`, string(env.Data))

	rec, env = suite.do(http.MethodDelete, "/api/transactions/"+tx.ID.String(), suite.userToken, nil)
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
	assert.Equal(suite.T(), "Transaction not found", env.Error)
}

func (suite *RouterTestSuite) TestValidationErrors() {
	rec, env := suite.do(http.MethodPost, "/api/transactions", suite.userToken, map[string]interface{}{
		"type": "expense", "category": "Food", "amount": -3, "date": "2024-01-06",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), "Please enter a valid amount", env.Error)

	req := httptest.NewRequest(http.MethodPost, "/api/budgets", strings.NewReader("{"))
	req.Header.Set("x-auth-token", suite.userToken)
	res := httptest.NewRecorder()
	suite.server.ServeHTTP(res, req)
	assert.Equal(suite.T(), http.StatusBadRequest, res.Code)
}

func (suite *RouterTestSuite) TestMonthlyScenario() {
	for _, body := range []map[string]interface{}{
		{"type": "income", "category": "Salary", "amount": 1000, "date": "2024-01-05"},
		{"type": "expense", "category": "Rent", "amount": 300, "date": "2024-01-10"},
		{"type": "expense", "category": "Food", "amount": 50, "date": "2024-02-01"},
	} {
		rec, _ := suite.do(http.MethodPost, "/api/transactions", suite.userToken, body)
		require.Equal(suite.T(), http.StatusCreated, rec.Code)
	}

	rec, env := suite.do(http.MethodGet, "/api/transactions/monthly-summary?months=2&end=2024-02", suite.userToken, nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	var series models.MonthlySeries
	require.NoError(suite.T(), json.Unmarshal(env.Data, &series))
	assert.Equal(suite.T(), []string{"Jan 2024", "Feb 2024"}, series.Labels)
	assert.Equal(suite.T(), []float64{1000, 0}, series.IncomeData)
	assert.Equal(suite.T(), []float64{300, 50}, series.ExpenseData)
	assert.Equal(suite.T(), []float64{700, 650}, series.Cumulative)

	rec, env = suite.do(http.MethodGet, "/api/dashboard/cumulative-savings?months=2&end=2024-02", suite.userToken, nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	var trend models.CumulativeSeries
	require.NoError(suite.T(), json.Unmarshal(env.Data, &trend))
	assert.Equal(suite.T(), []float64{700, 650}, trend.Values)

	rec, env = suite.do(http.MethodGet, "/api/dashboard/cumulative-savings?months=abc", suite.userToken, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.False(suite.T(), env.Success)
}

func (suite *RouterTestSuite) TestEmptyWindowIsNotAnError() {
	rec, env := suite.do(http.MethodGet, "/api/dashboard/monthly-category-expenses?months=3", suite.userToken, nil)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.True(suite.T(), env.Success)

	var matrix models.MonthlyCategoryExpenses
	require.NoError(suite.T(), json.Unmarshal(env.Data, &matrix))
	assert.Len(suite.T(), matrix.Labels, 3)
}

func (suite *RouterTestSuite) TestExportCSV() {
	rec, env := suite.do(http.MethodGet, "/api/transactions/export", suite.userToken, nil)
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
	assert.Equal(suite.T(), "No transactions found to export", env.Error)

	rec, _ = suite.do(http.MethodPost, "/api/transactions/seed-sample", suite.userToken, nil)
	require.Equal(suite.T(), http.StatusCreated, rec.Code)

	rec, _ = suite.do(http.MethodGet, "/api/transactions/export?format=csv", suite.userToken, nil)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(suite.T(), rec.Header().Get("Content-Disposition"), "attachment")
	assert.True(suite.T(), strings.HasPrefix(rec.Body.String(), "type,category,amount,date,description"))
}

func (suite *RouterTestSuite) TestContactIsPublic() {
	rec, env := suite.do(http.MethodPost, "/api/contact", "", map[string]string{
		"name": "Eve", "email": "eve@example.com", "message": "hi",
	})
	assert.Equal(suite.T(), http.StatusCreated, rec.Code)
	assert.Equal(suite.T(), "Message received!", env.Message)
}

func (suite *RouterTestSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/transactions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "x-auth-token")
	rec := httptest.NewRecorder()
	suite.server.ServeHTTP(rec, req)

	assert.Equal(suite.T(), "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(suite.T(), strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "x-auth-token")
}

func (suite *RouterTestSuite) TestUnknownRoute() {
	rec, env := suite.do(http.MethodGet, "/api/nope", suite.userToken, nil)
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
	assert.False(suite.T(), env.Success)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
