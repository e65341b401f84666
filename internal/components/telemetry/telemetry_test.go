package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type recordedReport struct {
	kind string
	id   string
}

type recordingAPI struct {
	reports []recordedReport
}

func (r *recordingAPI) ReportBroken(id string, params ...any) {
	r.reports = append(r.reports, recordedReport{kind: "broken", id: id})
}

func (r *recordingAPI) ReportWarning(id string, params ...any) {
	r.reports = append(r.reports, recordedReport{kind: "warning", id: id})
}

func (r *recordingAPI) ReportDebug(msg string, params ...any) {
	r.reports = append(r.reports, recordedReport{kind: "debug", id: msg})
}

func (r *recordingAPI) ReportCount(id string, count int64) {
	r.reports = append(r.reports, recordedReport{kind: "count", id: id})
}

type memoryOutput struct {
	mutex    sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.messages[id] = contents
}

func TestScopedAPI(t *testing.T) {
	inner := &recordingAPI{}
	scoped := NewScopedAPI("bsu_scraper", inner)

	scoped.ReportBroken("session.login")
	scoped.ReportWarning("session.term-data")
	scoped.ReportDebug("fetch page")
	scoped.ReportCount("session.requests", 3)

	require.Equal(t, []recordedReport{
		{kind: "broken", id: "bsu_scraper: session.login"},
		{kind: "warning", id: "bsu_scraper: session.term-data"},
		{kind: "debug", id: "bsu_scraper: fetch page"},
		{kind: "count", id: "bsu_scraper: session.requests"},
	}, inner.reports)
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	tel := &recordingAPI{}
	out := &memoryOutput{messages: map[string]string{}}

	client := resty.New()
	client.SetBaseURL(server.URL)
	err := InstrumentResty(client, tel, out)
	require.NoError(t, err)

	_, err = client.R().
		SetFormData(map[string]string{"tbFam": "Иванов"}).
		Post("/Login.aspx")
	require.NoError(t, err)

	require.Equal(t, []recordedReport{
		{kind: "debug", id: report_resty_request},
		{kind: "debug", id: report_resty_response},
	}, tel.reports)

	message, ok := out.messages["1"]
	require.True(t, ok)
	require.True(t, strings.HasPrefix(message, "---- REQUEST ----"))
	require.Contains(t, message, "tbFam=")
	require.Contains(t, message, "<html>ok</html>")
}

func TestInstrumentRestyGetWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>login</html>"))
	}))
	defer server.Close()

	out := &memoryOutput{messages: map[string]string{}}
	client := resty.New()
	client.SetBaseURL(server.URL)
	require.NoError(t, InstrumentResty(client, &recordingAPI{}, out))

	res, err := client.R().Get("/Login.aspx")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())

	message, ok := out.messages["1"]
	require.True(t, ok)
	require.Contains(t, message, "GET "+server.URL+"/Login.aspx")
	require.Contains(t, message, "<NO BODY AVAILABLE>")
	require.Contains(t, message, "<html>login</html>")
}

func TestFormatRequestBodyWithoutBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://localhost/MainInfo.aspx", nil)
	require.NoError(t, err)
	require.Equal(t, "<NO BODY AVAILABLE>", formatRequestBody(req))

	req.GetBody = func() (io.ReadCloser, error) {
		return nil, nil
	}
	require.Equal(t, "<NO BODY AVAILABLE>", formatRequestBody(req))
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0600))

	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	out.Write("1", "---- REQUEST ----")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	contents, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Equal(t, "---- REQUEST ----", string(contents))
}

func TestSetupOtelWithoutExporters(t *testing.T) {
	config := OtlpConfig{}
	require.False(t, config.Enabled())
	require.True(t, OtlpConfig{Metrics: OtlpConnConfig{HttpEndpoint: "http://localhost:4318"}}.Enabled())

	otel, err := SetupOtel(context.Background(), "bsu-cli", config)
	require.NoError(t, err)
	require.Nil(t, otel.TracerProvider)
	require.Nil(t, otel.MeterProvider)
	require.NoError(t, otel.Shutdown(context.Background()))
}
