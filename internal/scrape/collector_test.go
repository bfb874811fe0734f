package scrape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubFetcher struct {
	result FetchResult
	err    error
}

func (s *stubFetcher) Fetch(_ context.Context, _ string) (FetchResult, error) {
	return s.result, s.err
}

type recordingArchiver struct {
	objects map[string][]byte
	err     error
}

func (r *recordingArchiver) Save(_ context.Context, objectName string, data []byte) error {
	if r.err != nil {
		return r.err
	}
	if r.objects == nil {
		r.objects = make(map[string][]byte)
	}
	r.objects[objectName] = data
	return nil
}

func TestCollectReturnsCandidatesAndDiagnostics(t *testing.T) {
	body := []byte(`<html><body>
		<form action="/signup"></form>
		<a href="https://chat.whatsapp.com/X">join</a>
	</body></html>`)
	fetcher := &stubFetcher{result: FetchResult{
		FinalURL:   "https://lp.example.com/obrigado",
		StatusCode: 200,
		Body:       body,
	}}

	c := NewPageCollector(fetcher, nil, zap.NewNop())
	got := c.Collect(context.Background(), "https://lp.example.com/")

	assert.Equal(t, []string{"https://chat.whatsapp.com/X"}, got.Links)
	assert.True(t, got.HasForm)
	assert.True(t, got.ThankYouPage)
}

func TestCollectFetchFailureYieldsEmptyResult(t *testing.T) {
	fetcher := &stubFetcher{err: &FetchError{Kind: FetchTimeout, URL: "https://slow.test"}}

	c := NewPageCollector(fetcher, nil, zap.NewNop())
	got := c.Collect(context.Background(), "https://slow.test")

	assert.Empty(t, got.Links)
	assert.False(t, got.HasForm)
	assert.False(t, got.ThankYouPage)
}

func TestCollectNoFormNoThanks(t *testing.T) {
	fetcher := &stubFetcher{result: FetchResult{
		FinalURL: "https://lp.example.com/landing",
		Body:     []byte(`<html><body><p>hello</p></body></html>`),
	}}

	c := NewPageCollector(fetcher, nil, zap.NewNop())
	got := c.Collect(context.Background(), "https://lp.example.com/landing")

	assert.Empty(t, got.Links)
	assert.False(t, got.HasForm)
	assert.False(t, got.ThankYouPage)
}

func TestCollectArchivesSnapshot(t *testing.T) {
	body := []byte(`<html><body>ok</body></html>`)
	fetcher := &stubFetcher{result: FetchResult{FinalURL: "https://lp.example.com/", Body: body}}
	archive := &recordingArchiver{}

	c := NewPageCollector(fetcher, archive, zap.NewNop())
	c.Collect(context.Background(), "https://lp.example.com/")

	assert.Len(t, archive.objects, 1)
	for name, data := range archive.objects {
		assert.Regexp(t, `^pages/\d{4}-\d{2}-\d{2}/[0-9a-f]{64}\.html$`, name)
		assert.Equal(t, body, data)
	}
}

func TestCollectArchiveFailureIsNonFatal(t *testing.T) {
	fetcher := &stubFetcher{result: FetchResult{
		FinalURL: "https://lp.example.com/",
		Body:     []byte(`<html><a href="https://chat.whatsapp.com/X">x</a></html>`),
	}}
	archive := &recordingArchiver{err: assert.AnError}

	c := NewPageCollector(fetcher, archive, zap.NewNop())
	got := c.Collect(context.Background(), "https://lp.example.com/")

	assert.Equal(t, []string{"https://chat.whatsapp.com/X"}, got.Links)
}
