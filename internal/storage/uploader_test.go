package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"aqdaily/internal/config"
	apperrors "aqdaily/internal/errors"
)

type fakeS3 struct {
	mu     sync.Mutex
	inputs []*s3manager.UploadInput
	bodies []string
	err    error
}

func (f *fakeS3) Upload(in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return f.UploadWithContext(context.Background(), in, opts...)
}

func (f *fakeS3) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	return &s3manager.UploadOutput{Location: "s3://" + *in.Bucket + "/" + *in.Key}, nil
}

func tempFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestS3Uploader_Upload(t *testing.T) {
	fake := &fakeS3{}
	u := newS3Uploader(fake, config.S3Config{Bucket: "aq-archive", Prefix: "daily"}, nil)
	path := tempFile(t, "Aeroqual_2024-03-01_2024-03-02.csv", "timestamp\n")

	require.NoError(t, u.Upload(context.Background(), CategoryAnalysis, path))
	require.Len(t, fake.inputs, 1)
	assert.Equal(t, "aq-archive", *fake.inputs[0].Bucket)
	assert.Equal(t, "daily/analysis/Aeroqual_2024-03-01_2024-03-02.csv", *fake.inputs[0].Key)
	assert.Equal(t, "text/csv", *fake.inputs[0].ContentType)
	assert.Equal(t, "timestamp\n", fake.bodies[0])
}

func TestS3Uploader_Errors(t *testing.T) {
	u := newS3Uploader(&fakeS3{err: errors.New("denied")}, config.S3Config{Bucket: "b"}, nil)

	err := u.Upload(context.Background(), CategoryRaw, tempFile(t, "x.csv", ""))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	assert.Contains(t, err.Error(), "s3://b/raw/x.csv")

	err = u.Upload(context.Background(), CategoryRaw, filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestNewS3Uploader_Key(t *testing.T) {
	u, err := NewS3Uploader(config.S3Config{Bucket: "b", Region: "eu-west-2", Endpoint: "http://localhost:9000"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "report/availability_2024-03-01.json", u.Key(CategoryReport, "/tmp/availability_2024-03-01.json"))
}

func TestDriveUploader_Upload(t *testing.T) {
	var (
		gotMethod string
		gotBody   string
		calls     int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"file-1"}`))
	}))
	defer srv.Close()

	u, err := NewDriveUploaderWithOptions(context.Background(),
		config.DriveConfig{ReportFolderID: "folder-reports"}, nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	path := tempFile(t, "availability_2024-03-01.html", "<table></table>")
	require.NoError(t, u.Upload(context.Background(), CategoryReport, path))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Contains(t, gotBody, "folder-reports")
	assert.Contains(t, gotBody, "availability_2024-03-01.html")
	assert.Contains(t, gotBody, "<table></table>")

	require.NoError(t, u.Upload(context.Background(), CategoryRaw, path))
	assert.Equal(t, 1, calls, "categories without a folder are skipped")
}

func TestNew(t *testing.T) {
	u, err := New(context.Background(), config.UploadConfig{Provider: "none"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "none", u.Name())
	assert.NoError(t, u.Upload(context.Background(), CategoryRaw, "/nonexistent"))

	u, err = New(context.Background(), config.UploadConfig{Provider: "s3", S3: config.S3Config{Bucket: "b", Region: "eu-west-2"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "s3", u.Name())

	_, err = New(context.Background(), config.UploadConfig{Provider: "ftp"}, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", ContentType("a.csv"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ContentType("a.xlsx"))
	assert.Contains(t, ContentType("a.json"), "application/json")
	assert.Contains(t, ContentType("a.html"), "text/html")
	assert.Equal(t, "application/octet-stream", ContentType("a.unknownext"))
}
