package scrape

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePageSource struct {
	pages []Page
	err   error
}

func (f *fakePageSource) ListPages(_ context.Context, _ int64) ([]Page, error) {
	return f.pages, f.err
}

type fakeCollector struct {
	results map[string]CollectResult
	visited []string
}

func (f *fakeCollector) Collect(_ context.Context, pageURL string) CollectResult {
	f.visited = append(f.visited, pageURL)
	return f.results[pageURL]
}

// fakeLinkStore mimics insert-or-ignore keyed by (url, owner) and keeps its
// state across runs so novelty behaves like the real store.
type fakeLinkStore struct {
	stored  map[string]struct{}
	batches [][]string
	saveErr error
}

func (f *fakeLinkStore) Save(_ context.Context, urls []string, _ string, _ int64, _ time.Time) ([]string, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if f.stored == nil {
		f.stored = make(map[string]struct{})
	}
	f.batches = append(f.batches, urls)
	var inserted []string
	for _, u := range urls {
		if _, ok := f.stored[u]; ok {
			continue
		}
		f.stored[u] = struct{}{}
		inserted = append(inserted, u)
	}
	return inserted, nil
}

func (f *fakeLinkStore) List(_ context.Context, _ int, _ *int64) ([]Link, error) {
	return nil, nil
}

type fakeRunStore struct {
	rec   RunRecord
	wrote bool
}

func (f *fakeRunStore) Write(_ context.Context, rec RunRecord) error {
	f.rec = rec
	f.wrote = true
	return nil
}

func (f *fakeRunStore) Read(_ context.Context, _ int64) (RunRecord, bool, error) {
	return f.rec, f.wrote, nil
}

type fakeNotifier struct {
	notified []string
}

func (f *fakeNotifier) Notify(_ context.Context, link, _ string) bool {
	f.notified = append(f.notified, link)
	return true
}

type fakePublisher struct {
	events []Link
}

func (f *fakePublisher) PublishLinkFound(_ context.Context, link Link) error {
	f.events = append(f.events, link)
	return nil
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

func newTestRunner(
	pages *fakePageSource,
	collector *fakeCollector,
	links *fakeLinkStore,
	runs *fakeRunStore,
	notifier *fakeNotifier,
	events EventPublisher,
) *Runner {
	clock := fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewRunner(pages, collector, links, runs, notifier, events, clock, zap.NewNop())
}

func TestRunEmptyPageList(t *testing.T) {
	runs := &fakeRunStore{}
	r := newTestRunner(&fakePageSource{}, &fakeCollector{}, &fakeLinkStore{}, runs, &fakeNotifier{}, nil)

	got, err := r.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.False(t, got.Success)
	assert.Zero(t, got.TotalChecked)
	assert.Zero(t, got.LinksFound)
	assert.Empty(t, got.Links)
	assert.NotEmpty(t, got.Message)
	assert.False(t, runs.wrote, "empty run must not overwrite the run record")
}

func TestRunSkipsEmptyPageURLs(t *testing.T) {
	pages := &fakePageSource{pages: []Page{
		{URL: "", Name: "x"},
		{URL: "https://a.test", Name: "y"},
	}}
	collector := &fakeCollector{}
	r := newTestRunner(pages, collector, &fakeLinkStore{}, &fakeRunStore{}, &fakeNotifier{}, nil)

	got, err := r.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, got.Success)
	assert.Equal(t, 1, got.TotalChecked)
	assert.Equal(t, []string{"https://a.test"}, collector.visited)
}

func TestRunCleansAndPersistsPageBatch(t *testing.T) {
	pages := &fakePageSource{pages: []Page{{URL: "https://lp.test", Name: "campaign-a"}}}
	collector := &fakeCollector{results: map[string]CollectResult{
		"https://lp.test": {Links: []string{
			"javascript:https://chat.whatsapp.com/AbC#frag",
			"https://chat.whatsapp.com/AbC",
			"https://api.whatsapp.com/send?phone=5511999999999",
			"https://chat.whatsapp.com/DeF",
		}},
	}}
	links := &fakeLinkStore{}
	runs := &fakeRunStore{}
	notifier := &fakeNotifier{}
	events := &fakePublisher{}
	r := newTestRunner(pages, collector, links, runs, notifier, events)

	got, err := r.Run(context.Background(), 7)
	require.NoError(t, err)

	require.True(t, got.Success)
	assert.Equal(t, 1, got.TotalChecked)
	assert.Equal(t, 2, got.LinksFound)

	// one batch per page, prefix stripped, in-batch duplicate and non-group
	// link dropped, first-seen order preserved
	require.Len(t, links.batches, 1)
	assert.Equal(t, []string{"https://chat.whatsapp.com/AbC", "https://chat.whatsapp.com/DeF"}, links.batches[0])
	assert.Equal(t, []string{"https://chat.whatsapp.com/AbC", "https://chat.whatsapp.com/DeF"}, notifier.notified)
	require.Len(t, events.events, 2)
	assert.Equal(t, "campaign-a", events.events[0].Source)
	assert.Equal(t, int64(7), events.events[0].Owner)

	require.True(t, runs.wrote)
	assert.Equal(t, 1, runs.rec.PagesChecked)
	assert.Equal(t, 2, runs.rec.LinksFound)
	assert.Contains(t, got.Message, "links found: 2")
}

func TestRunSecondPassFindsNothingNew(t *testing.T) {
	pages := &fakePageSource{pages: []Page{{URL: "https://lp.test", Name: "c"}}}
	collector := &fakeCollector{results: map[string]CollectResult{
		"https://lp.test": {Links: []string{"https://chat.whatsapp.com/AbC"}},
	}}
	links := &fakeLinkStore{}
	notifier := &fakeNotifier{}
	r := newTestRunner(pages, collector, links, &fakeRunStore{}, notifier, nil)

	first, err := r.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.LinksFound)

	second, err := r.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Zero(t, second.LinksFound)
	assert.Empty(t, second.Links)
	assert.Len(t, notifier.notified, 1, "no re-notification for an unchanged page")
	assert.Len(t, links.stored, 1)
}

func TestRunFailedPageDoesNotAbortRun(t *testing.T) {
	pages := &fakePageSource{pages: []Page{
		{URL: "https://down.test", Name: "a"},
		{URL: "https://up.test", Name: "b"},
	}}
	// down.test has no entry: the collector reports zero candidates, exactly
	// what a fetch failure looks like to the runner
	collector := &fakeCollector{results: map[string]CollectResult{
		"https://up.test": {Links: []string{"https://chat.whatsapp.com/Ok"}},
	}}
	r := newTestRunner(pages, collector, &fakeLinkStore{}, &fakeRunStore{}, &fakeNotifier{}, nil)

	got, err := r.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, got.Success)
	assert.Equal(t, 2, got.TotalChecked)
	assert.Equal(t, 1, got.LinksFound)
	assert.Equal(t, []string{"https://down.test", "https://up.test"}, collector.visited)
}

func TestRunSaveFailureSkipsPageAndContinues(t *testing.T) {
	pages := &fakePageSource{pages: []Page{{URL: "https://lp.test", Name: "c"}}}
	collector := &fakeCollector{results: map[string]CollectResult{
		"https://lp.test": {Links: []string{"https://chat.whatsapp.com/AbC"}},
	}}
	links := &fakeLinkStore{saveErr: assert.AnError}
	notifier := &fakeNotifier{}
	r := newTestRunner(pages, collector, links, &fakeRunStore{}, notifier, nil)

	got, err := r.Run(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, got.Success, "a store failure on one page never flips run success")
	assert.Zero(t, got.LinksFound)
	assert.Empty(t, notifier.notified)
}

func TestRunPageListError(t *testing.T) {
	r := newTestRunner(&fakePageSource{err: assert.AnError}, &fakeCollector{}, &fakeLinkStore{}, &fakeRunStore{}, &fakeNotifier{}, nil)

	_, err := r.Run(context.Background(), 1)
	assert.Error(t, err)
}
