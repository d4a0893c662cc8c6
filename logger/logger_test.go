package logger

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func Test_Initialize_File(t *testing.T) {
	dir := t.TempDir()

	err := Initialize("ilohwmetrics", "host01", LoggerConfig{
		LogLevel:  "debug",
		LogMethod: "file",
		LogFile: LogFile{
			Path:       dir,
			MaxSize:    1,
			MaxBackups: 1,
			MaxAge:     1,
		},
	})
	assert.NoError(t, err)

	zap.L().Debug("chassis status fetched", zap.String("chassis_id", "1"))
	Flush()

	b, err := os.ReadFile(filepath.Join(dir, "ilohwmetrics.log"))
	assert.NoError(t, err)
	assert.Contains(t, string(b), `"app":"ilohwmetrics"`)
	assert.Contains(t, string(b), `"host":"host01"`)
	assert.Contains(t, string(b), `"chassis_id":"1"`)
	assert.Equal(t, "debug", GetLevel())
}

func Test_Initialize_Vector(t *testing.T) {
	var mu sync.Mutex
	var received []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		received = append(received, string(b))
		mu.Unlock()
		assert.Equal(t, "ilohwmetrics-vector-http", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := Initialize("ilohwmetrics", "host01", LoggerConfig{
		LogLevel:       "info",
		LogMethod:      "vector",
		VectorEndpoint: server.URL,
	})
	assert.NoError(t, err)

	zap.L().Info("session created")
	Flush()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, received, 1)
	assert.True(t, strings.Contains(received[0], `"msg":"session created"`))
}

func Test_Initialize_UnknownMethod(t *testing.T) {
	err := Initialize("ilohwmetrics", "host01", LoggerConfig{LogMethod: "syslog"})
	assert.Error(t, err)
}

func Test_Verbosity(t *testing.T) {
	SetLevel("info")

	rr := httptest.NewRecorder()
	SetVerbosity(rr, httptest.NewRequest(http.MethodPut, "/verbosity?v=warn", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "warn", GetLevel())

	rr = httptest.NewRecorder()
	Verbosity(rr, httptest.NewRequest(http.MethodGet, "/verbosity", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"verbosity": "warn"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	SetVerbosity(rr, httptest.NewRequest(http.MethodPut, "/verbosity", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func Test_parseLevel(t *testing.T) {
	assert.Equal(t, zap.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zap.InfoLevel, parseLevel("bogus"))
}
