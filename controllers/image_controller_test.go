package controllers

import (
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picstash/picstash/models"
)

func TestProtectedRoutesRedirectWhenUnauthenticated(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Sec.ret1")
	cookie := app.login(t, "alice", "Sec.ret1")
	w := app.uploadFile(t, "keep.png", "bytes", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	paths := []string{"/home", "/upload", "/delete/1", "/logout"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := app.get(t, path)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/login", w.Header().Get("Location"))
		})
	}

	// a forged cookie must not pass the gate either
	forged := &http.Cookie{Name: cookie.Name, Value: "forged-token"}
	w = app.get(t, "/home", forged)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// no gated request mutated the stores
	assert.EqualValues(t, 1, app.uploadCount(t))
	assert.EqualValues(t, 1, app.userCount(t))
}

func TestUploadRequiresFile(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Sec.ret1")
	cookie := app.login(t, "alice", "Sec.ret1")

	w := app.uploadFile(t, "", "", cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), msgNoFileSelected)
	assert.EqualValues(t, 0, app.uploadCount(t))
}

func TestUploadRoundTrip(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Sec.ret1")
	cookie := app.login(t, "alice", "Sec.ret1")

	w := app.uploadFile(t, "photo.png", "png-bytes", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Success upload file photo.png")

	var record models.ImageUpload
	require.NoError(t, app.db.First(&record).Error)
	assert.Contains(t, record.Path, app.uploadDir)
	assert.Contains(t, record.Path, "photo.png")

	// backing file exists with the uploaded bytes
	b, err := os.ReadFile(record.Path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))

	// it shows up on home
	w = app.get(t, "/home", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "photo.png")

	// delete removes record and file, then redirects home
	w = app.get(t, fmt.Sprintf("/delete/%d", record.ID), cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))
	assert.EqualValues(t, 0, app.uploadCount(t))
	_, err = os.Stat(record.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestUploadRecordsBindToUploader(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Sec.ret1")
	app.register(t, "bob", "Other1.")
	aliceCookie := app.login(t, "alice", "Sec.ret1")
	bobCookie := app.login(t, "bob", "Other1.")

	require.Equal(t, http.StatusOK, app.uploadFile(t, "a1.png", "a1", aliceCookie).Code)
	require.Equal(t, http.StatusOK, app.uploadFile(t, "a2.png", "a2", aliceCookie).Code)
	require.Equal(t, http.StatusOK, app.uploadFile(t, "b1.png", "b1", bobCookie).Code)

	var alice, bob models.User
	require.NoError(t, app.db.Where("username = ?", "alice").First(&alice).Error)
	require.NoError(t, app.db.Where("username = ?", "bob").First(&bob).Error)

	var aliceImages []models.ImageUpload
	require.NoError(t, app.db.Where("id_user = ?", alice.ID).Find(&aliceImages).Error)
	require.Len(t, aliceImages, 2)
	for _, img := range aliceImages {
		assert.Equal(t, alice.ID, img.UserID)
	}

	// home listings do not leak across users
	body := app.get(t, "/home", aliceCookie).Body.String()
	assert.Contains(t, body, "a1.png")
	assert.Contains(t, body, "a2.png")
	assert.NotContains(t, body, "b1.png")

	body = app.get(t, "/home", bobCookie).Body.String()
	assert.Contains(t, body, "b1.png")
	assert.NotContains(t, body, "a1.png")
}

func TestDeleteUnknownRecord(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Sec.ret1")
	cookie := app.login(t, "alice", "Sec.ret1")

	w := app.get(t, "/delete/9999", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), msgRecordNotFound)

	w = app.get(t, "/delete/not-a-number", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteChecksOwnership(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Sec.ret1")
	app.register(t, "bob", "Other1.")
	aliceCookie := app.login(t, "alice", "Sec.ret1")
	bobCookie := app.login(t, "bob", "Other1.")

	require.Equal(t, http.StatusOK, app.uploadFile(t, "mine.png", "data", aliceCookie).Code)

	var record models.ImageUpload
	require.NoError(t, app.db.First(&record).Error)

	w := app.get(t, fmt.Sprintf("/delete/%d", record.ID), bobCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), msgNotOwner)

	// record and file survive the refused delete
	assert.EqualValues(t, 1, app.uploadCount(t))
	_, err := os.Stat(record.Path)
	assert.NoError(t, err)
}

func TestUploadPageRendersEmptyMessage(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Sec.ret1")
	cookie := app.login(t, "alice", "Sec.ret1")

	w := app.get(t, "/upload", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":""`)
}

func TestUploadTooLarge(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "Sec.ret1")
	cookie := app.login(t, "alice", "Sec.ret1")

	// controller limit is 16MB in the test harness
	big := make([]byte, 17*1024*1024)
	w := app.uploadFile(t, "big.bin", string(big), cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "upload limit")
	assert.EqualValues(t, 0, app.uploadCount(t))

	// nothing left on disk
	entries, err := os.ReadDir(app.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
