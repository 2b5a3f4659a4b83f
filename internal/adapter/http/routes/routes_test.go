package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"usersapi/internal/adapter/database"
	"usersapi/internal/adapter/http/handler"
	"usersapi/internal/core/model/response"
	"usersapi/internal/core/service"
	"usersapi/internal/core/telemetry"
	"usersapi/pkg/config"
	. "usersapi/pkg/test"
)

func newTestRouter(t *testing.T, full bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db := InitTestDB()
	t.Cleanup(func() { db.Close() })

	store := database.NewSQLStore(db)
	svc := service.NewUserService(store.Users, nil, nil, 0)

	handlers := HandlersConfig{
		UserHandler:   handler.NewUserHandler(svc, nil),
		HealthHandler: handler.NewHealthHandler(store, svc),
	}

	if !full {
		return SetupRouterForTests(handlers)
	}

	registry := prometheus.NewRegistry()
	handlers.Metrics = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return SetupRouter(handlers, telemetry.NewAppMetrics(registry), config.NewNopLogger(), &config.AppConfig{
		GinMode:     gin.TestMode,
		ServiceName: "users-api-test",
	})
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rr, req)

	return rr
}

func TestRoutesRegistered(t *testing.T) {
	RegisterTestingT(t)

	router := newTestRouter(t, true)

	Expect(serve(router, "GET", "/", "").Code).To(Equal(http.StatusOK))
	Expect(serve(router, "GET", "/health", "").Code).To(Equal(http.StatusOK))
	Expect(serve(router, "GET", "/api/users", "").Code).To(Equal(http.StatusOK))

	created := serve(router, "POST", "/api/users", `{"name":"Alice","email":"alice@example.com"}`)
	Expect(created.Code).To(Equal(http.StatusCreated))

	Expect(serve(router, "GET", "/api/users/1", "").Code).To(Equal(http.StatusOK))
	Expect(serve(router, "PUT", "/api/users/1", `{"name":"Alice B","email":"alice@example.com"}`).Code).To(Equal(http.StatusOK))
	Expect(serve(router, "DELETE", "/api/users/1", "").Code).To(Equal(http.StatusOK))

	metrics := serve(router, "GET", "/metrics", "")
	Expect(metrics.Code).To(Equal(http.StatusOK))
	Expect(metrics.Body.String()).To(ContainSubstring("http_requests_total"))
}

func TestRequestIDHeader(t *testing.T) {
	RegisterTestingT(t)

	rr := serve(newTestRouter(t, true), "GET", "/api/users", "")

	Expect(rr.Header().Get("X-Request-ID")).ToNot(BeEmpty())
}

func TestNoRoute(t *testing.T) {
	RegisterTestingT(t)

	rr := serve(newTestRouter(t, false), "GET", "/api/unknown", "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))

	var body response.Envelope
	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())
	Expect(body.Success).To(BeFalse())
	Expect(body.Message).To(Equal("Route not found"))
}

func TestRecovery(t *testing.T) {
	RegisterTestingT(t)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(recovery(config.NewNopLogger()))
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	rr := serve(router, "GET", "/boom", "")

	Expect(rr.Code).To(Equal(http.StatusInternalServerError))

	var body response.Envelope
	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())
	Expect(body.Message).To(Equal("Something went wrong!"))
	Expect(body.Error).To(Equal("kaboom"))
}
