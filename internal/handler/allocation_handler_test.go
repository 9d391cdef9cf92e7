package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ra-lab-allocator/internal/dto"
	"github.com/noah-isme/ra-lab-allocator/internal/models"
	appErrors "github.com/noah-isme/ra-lab-allocator/pkg/errors"
)

type allocationServiceMock struct {
	resp        *dto.AllocationResponse
	err         error
	lastReq     dto.AllocateRequest
	coursesBody string
	rasBody     string
	seed        *uint64
}

func (m *allocationServiceMock) Allocate(ctx context.Context, req dto.AllocateRequest) (*dto.AllocationResponse, error) {
	m.lastReq = req
	return m.resp, m.err
}

func (m *allocationServiceMock) AllocateUpload(ctx context.Context, courses, assistants io.Reader, seed *uint64) (*dto.AllocationResponse, error) {
	c, _ := io.ReadAll(courses)
	r, _ := io.ReadAll(assistants)
	m.coursesBody, m.rasBody, m.seed = string(c), string(r), seed
	return m.resp, m.err
}

func (m *allocationServiceMock) SlotMap() models.SlotMapping {
	return models.SlotMapping{"L1": "A1"}
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func newMultipartContext(t *testing.T, files map[string]string, fields map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range files {
		part, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	require.NoError(t, mw.Close())

	c, w := newGinContext(http.MethodPost, "/allocations/upload", buf.Bytes())
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeEnvelope(t, w)
	errBody, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected error envelope, got %s", w.Body.String())
	return errBody["code"].(string)
}

func TestAllocationHandlerAllocate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &allocationServiceMock{resp: &dto.AllocationResponse{Seed: 7, PoolSize: 2}}
	handler := NewAllocationHandler(mockSvc, 0)

	payload, _ := json.Marshal(map[string]interface{}{
		"courses":    []map[string]string{{"courseCode": "CS101", "slot": "L1+L2", "courseType": "LO"}},
		"assistants": []map[string]interface{}{{"name": "Asha", "numLabs": 1}},
	})
	c, w := newGinContext(http.MethodPost, "/allocations", payload)
	handler.Allocate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mockSvc.lastReq.Courses, 1)
	assert.Equal(t, "CS101", mockSvc.lastReq.Courses[0].CourseCode)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 7, data["seed"])
}

func TestAllocationHandlerAllocateRejectsMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAllocationHandler(&allocationServiceMock{}, 0)

	c, w := newGinContext(http.MethodPost, "/allocations", []byte("{"))
	handler.Allocate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, w))
}

func TestAllocationHandlerAllocatePropagatesServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &allocationServiceMock{err: appErrors.Clone(appErrors.ErrPayloadTooLarge, "too many assistants")}
	handler := NewAllocationHandler(mockSvc, 0)

	c, w := newGinContext(http.MethodPost, "/allocations", []byte(`{"courses":[],"assistants":[]}`))
	handler.Allocate(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAllocationHandlerUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &allocationServiceMock{resp: &dto.AllocationResponse{Seed: 42}}
	handler := NewAllocationHandler(mockSvc, 1<<20)

	c, w := newMultipartContext(t,
		map[string]string{"courses": "COURSE CODE\nCS101\n", "ras": "NAME\nAsha\n"},
		map[string]string{"seed": "42"},
	)
	handler.Upload(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "COURSE CODE\nCS101\n", mockSvc.coursesBody)
	assert.Equal(t, "NAME\nAsha\n", mockSvc.rasBody)
	require.NotNil(t, mockSvc.seed)
	assert.EqualValues(t, 42, *mockSvc.seed)
}

func TestAllocationHandlerUploadMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAllocationHandler(&allocationServiceMock{}, 0)

	c, w := newMultipartContext(t, map[string]string{"courses": "COURSE CODE\n"}, nil)
	handler.Upload(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "missing files", body["error"].(map[string]interface{})["message"])
}

func TestAllocationHandlerUploadRejectsBadSeed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAllocationHandler(&allocationServiceMock{}, 0)

	c, w := newMultipartContext(t,
		map[string]string{"courses": "x", "ras": "y"},
		map[string]string{"seed": "-3"},
	)
	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAllocationHandlerUploadTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAllocationHandler(&allocationServiceMock{}, 64)

	big := string(bytes.Repeat([]byte("a"), 4096))
	c, w := newMultipartContext(t, map[string]string{"courses": big, "ras": big}, nil)
	handler.Upload(c)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, appErrors.ErrPayloadTooLarge.Code, errorCode(t, w))
}

func TestAllocationHandlerSlotMap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAllocationHandler(&allocationServiceMock{}, 0)

	c, w := newGinContext(http.MethodGet, "/slot-map", nil)
	handler.SlotMap(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "A1", data["L1"])
}
