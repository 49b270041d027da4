package controllers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/picstash/picstash/middleware"
	"github.com/picstash/picstash/models"
	"github.com/picstash/picstash/storage"
	"github.com/picstash/picstash/utils"
)

const testSecret = "controller-test-secret"

type testApp struct {
	router    *gin.Engine
	db        *gorm.DB
	sessions  *utils.SessionStore
	uploadDir string
}

// newTestApp wires the production route table against an in-memory
// sqlite database, a memory-backed session store and a temp upload dir.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if utils.Sugar == nil {
		utils.Logger = zap.NewNop()
		utils.Sugar = utils.Logger.Sugar()
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ImageUpload{}))

	sessions := utils.NewSessionStore(nil, time.Hour)
	uploadDir := t.TempDir()

	auth := NewAuthController(db, sessions, testSecret, time.Hour)
	images := NewImageController(db, storage.NewDisk(), uploadDir, 16)

	r := gin.New()
	r.GET("/", auth.Index)
	r.GET("/register", auth.RegisterPage)
	r.POST("/register", auth.Register)
	r.GET("/login", auth.LoginPage)
	r.POST("/login", auth.Login)

	protected := r.Group("")
	protected.Use(middleware.SessionRequired(sessions, testSecret))
	protected.GET("/home", images.Home)
	protected.GET("/upload", images.UploadPage)
	protected.POST("/upload", images.Upload)
	protected.GET("/delete/:id", images.Delete)
	protected.GET("/logout", auth.Logout)

	return &testApp{router: r, db: db, sessions: sessions, uploadDir: uploadDir}
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// register creates an account directly through the handler.
func (a *testApp) register(t *testing.T, username, password string) {
	t.Helper()
	w := a.postForm(t, "/register", url.Values{
		"username":         {username},
		"password":         {password},
		"confirm-password": {password},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

// login authenticates and returns the session cookie.
func (a *testApp) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	w := a.postForm(t, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	require.Equal(t, "/home", w.Header().Get("Location"))
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set on login")
	return nil
}

// uploadFile posts a multipart body with the given file under field "file".
func (a *testApp) uploadFile(t *testing.T, filename, content string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// sessionIDFromCookie unwraps the signed cookie back to the session id.
func sessionIDFromCookie(t *testing.T, c *http.Cookie) string {
	t.Helper()
	sid, err := utils.ParseSessionID(testSecret, c.Value)
	require.NoError(t, err)
	return sid
}

func (a *testApp) userCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, a.db.Model(&models.User{}).Count(&n).Error)
	return n
}

func (a *testApp) uploadCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, a.db.Model(&models.ImageUpload{}).Count(&n).Error)
	return n
}
