package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/feedboard/internal/auth"
)

// multipartImage builds a multipart body with a single "image" file field
// carrying the given content type.
func multipartImage(t *testing.T, filename, contentType string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestHandleUpload(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")

	body, contentType := multipartImage(t, "photo.png", "image/png")
	req := httptest.NewRequest(http.MethodPost, "/feed/image", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	rec := httptest.NewRecorder()
	env.images.HandleUpload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "images/photo.png", resp["imageUrl"])
}

func TestHandleUpload_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartImage(t, "photo.png", "image/png")
	req := httptest.NewRequest(http.MethodPost, "/feed/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.images.HandleUpload(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleUpload_RejectedContentType(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")

	body, contentType := multipartImage(t, "archive.zip", "application/zip")
	req := httptest.NewRequest(http.MethodPost, "/feed/image", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	rec := httptest.NewRecorder()
	env.images.HandleUpload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpload_MissingFile(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("caption", "no file here"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/feed/image", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	rec := httptest.NewRecorder()
	env.images.HandleUpload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
