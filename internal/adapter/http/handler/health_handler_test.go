package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	. "usersapi/pkg/test"

	"usersapi/internal/adapter/database"
	"usersapi/internal/core/domain"
	"usersapi/internal/core/model/response"
	"usersapi/internal/core/service"

	factory "usersapi/pkg/test/factory"
)

func serveHealth(t *testing.T, store *database.Store) response.HealthResponse {
	gin.SetMode(gin.TestMode)

	svc := service.NewUserService(store.Users, nil, nil, 0)
	router := gin.New()
	router.GET("/health", NewHealthHandler(store, svc).Health)

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusOK))

	var body response.HealthResponse
	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())

	return body
}

func TestHealthConnected(t *testing.T) {
	RegisterTestingT(t)

	db := InitTestDB()
	defer db.Close()

	store := database.NewSQLStore(db)

	_, err := store.Users.Create(ctx, factory.NewUser[domain.User]())
	Expect(err).ToNot(HaveOccurred())

	body := serveHealth(t, store)

	Expect(body.Status).To(Equal("OK"))
	Expect(body.Database).To(Equal("Connected"))
	Expect(body.Driver).To(Equal("sqlite"))
	Expect(body.Users).ToNot(BeNil())
	Expect(*body.Users).To(Equal(int64(1)))
	Expect(body.Timestamp.IsZero()).To(BeFalse())
}

func TestHealthDisconnected(t *testing.T) {
	RegisterTestingT(t)

	db := InitTestDB()
	store := database.NewSQLStore(db)

	db.Close()

	body := serveHealth(t, store)

	Expect(body.Status).To(Equal("OK"))
	Expect(body.Database).To(Equal("Disconnected"))
	Expect(body.Users).To(BeNil())
}

func TestIndex(t *testing.T) {
	RegisterTestingT(t)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/", Index)

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(ContainSubstring("User API Server is running!"))
	Expect(rr.Body.String()).To(ContainSubstring("DELETE /api/users/:id"))
}
