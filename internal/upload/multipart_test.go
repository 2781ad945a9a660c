package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/media-io/s3-signer/internal/apierr"
	"github.com/media-io/s3-signer/internal/config"
	"github.com/media-io/s3-signer/internal/signer"
)

// fakeBackend implements just enough of the S3 multipart API for the
// orchestrator: initiate, complete and abort.
type fakeBackend struct {
	mu           sync.Mutex
	uploadID     string // returned by initiate; empty simulates a protocol violation
	failComplete bool
	failAbort    bool
	lastBody     string
	requests     int
}

func (f *fakeBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests++

		body, _ := io.ReadAll(r.Body)
		f.lastBody = string(body)

		query := r.URL.Query()
		switch {
		case r.Method == http.MethodPost && query.Has("uploads"):
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>`+
				`<InitiateMultipartUploadResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`+
				`<Bucket>media</Bucket><Key>big.raw</Key><UploadId>%s</UploadId>`+
				`</InitiateMultipartUploadResult>`, f.uploadID)

		case r.Method == http.MethodPost && query.Has("uploadId"):
			if f.failComplete {
				writeS3Error(w, http.StatusBadRequest, "InvalidPart",
					"One or more of the specified parts could not be found.")
				return
			}
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>`+
				`<CompleteMultipartUploadResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`+
				`<Location>https://media.example.com/big.raw</Location>`+
				`<Bucket>media</Bucket><Key>big.raw</Key><ETag>"abc"</ETag>`+
				`</CompleteMultipartUploadResult>`)

		case r.Method == http.MethodDelete:
			if f.failAbort {
				writeS3Error(w, http.StatusNotFound, "NoSuchUpload",
					"The specified upload does not exist.")
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			writeS3Error(w, http.StatusBadRequest, "InvalidRequest", "unexpected request")
		}
	}
}

func writeS3Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>`+
		`<Error><Code>%s</Code><Message>%s</Message></Error>`, code, message)
}

func newTestOrchestrator(t *testing.T, backend *fakeBackend) *Orchestrator {
	t.Helper()

	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	cfg, err := config.NewWithHostname("AKIAEXAMPLE", "test-secret", "custom", srv.URL)
	require.NoError(t, err)
	return NewOrchestrator(cfg, signer.New(cfg))
}

func TestCreateReturnsBackendUploadID(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, &fakeBackend{uploadID: "upload-42"})

	uploadID, err := o.Create(context.Background(), "media", "big.raw")
	require.NoError(t, err)
	require.Equal(t, "upload-42", uploadID)
}

func TestCreateMissingUploadIDIsProtocolViolation(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, &fakeBackend{uploadID: ""})

	_, err := o.Create(context.Background(), "media", "big.raw")
	require.Error(t, err)
	require.Equal(t, apierr.KindProtocol, apierr.KindOf(err))
}

func TestCreateThenPartURLSharesUploadID(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, &fakeBackend{uploadID: "upload-77"})

	uploadID, err := o.Create(context.Background(), "media", "big.raw")
	require.NoError(t, err)

	signed, err := o.PartURL(context.Background(), "media", "big.raw", uploadID, 1)
	require.NoError(t, err)

	parsed, err := url.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, uploadID, parsed.Query().Get("uploadId"))
}

func TestConcurrentPartURLs(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, &fakeBackend{uploadID: "upload-1"})

	var wg sync.WaitGroup
	urls := make([]string, 2)
	errs := make([]error, 2)
	for i := range urls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			urls[i], errs[i] = o.PartURL(context.Background(), "media", "big.raw", "upload-1", int32(i+1))
		}(i)
	}
	wg.Wait()

	for i := range urls {
		require.NoError(t, errs[i])
		require.NotEmpty(t, urls[i])
	}
	require.NotEqual(t, urls[0], urls[1])
}

func TestCompleteForwardsParts(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{uploadID: "upload-9"}
	o := newTestOrchestrator(t, backend)

	err := o.Complete(context.Background(), "media", "big.raw", "upload-9", []Part{
		{Number: 1, ETag: "etag-1"},
		{Number: 2, ETag: "etag-2"},
	})
	require.NoError(t, err)
	require.Contains(t, backend.lastBody, "<PartNumber>1</PartNumber>")
	require.Contains(t, backend.lastBody, "etag-2")
}

func TestCompleteEmptyPartsForwardedAsIs(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{uploadID: "upload-9"}
	o := newTestOrchestrator(t, backend)

	// No client-side minimum-parts validation: the empty list goes to the
	// backend and its verdict stands.
	err := o.Complete(context.Background(), "media", "big.raw", "upload-9", nil)
	require.NoError(t, err)
	require.False(t, strings.Contains(backend.lastBody, "<Part>"))
	require.Positive(t, backend.requests)
}

func TestCompleteBackendRejectionSurfaced(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, &fakeBackend{failComplete: true})

	err := o.Complete(context.Background(), "media", "big.raw", "upload-9", []Part{{Number: 1, ETag: "x"}})
	require.Error(t, err)
	require.Equal(t, apierr.KindBackend, apierr.KindOf(err))
	require.Contains(t, err.Error(), "InvalidPart")
}

func TestAbortUnknownUploadSurfacesBackendError(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, &fakeBackend{failAbort: true})

	err := o.Abort(context.Background(), "media", "big.raw", "no-such-upload")
	require.Error(t, err)
	require.Equal(t, apierr.KindBackend, apierr.KindOf(err))
}

func TestAbortSucceeds(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, &fakeBackend{})

	require.NoError(t, o.Abort(context.Background(), "media", "big.raw", "upload-3"))
}

func TestValidationBeforeBackend(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	o := newTestOrchestrator(t, backend)
	ctx := context.Background()

	_, err := o.Create(ctx, "", "k")
	require.Equal(t, apierr.KindValidation, apierr.KindOf(err))

	err = o.Complete(ctx, "b", "k", "", nil)
	require.Equal(t, apierr.KindValidation, apierr.KindOf(err))

	err = o.Abort(ctx, "b", "", "u")
	require.Equal(t, apierr.KindValidation, apierr.KindOf(err))

	require.Zero(t, backend.requests)
}
