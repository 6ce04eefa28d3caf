package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/david/studio-desk/internal/client"
	"github.com/david/studio-desk/internal/editorial"
	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSections answers with whatever the test queued.
type scriptedSections struct {
	next        *models.Section
	err         error
	calls       []string
	block       chan struct{}
	reviewBlock chan struct{}
	feedback    string

	mu sync.Mutex
}

func (s *scriptedSections) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *scriptedSections) answer(call string) (*models.Section, error) {
	s.record(call)
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.next, nil
}

func (s *scriptedSections) GetSection(context.Context, uuid.UUID) (*models.Section, error) {
	return s.answer("get")
}

func (s *scriptedSections) SaveSection(_ context.Context, _ uuid.UUID, content string) (*models.Section, error) {
	return s.answer("save:" + content)
}

func (s *scriptedSections) TransitionSection(_ context.Context, _ uuid.UUID, action editorial.Action) (*models.Section, error) {
	return s.answer(string(action))
}

func (s *scriptedSections) ReviewSection(context.Context, uuid.UUID) (string, error) {
	s.record("review")
	if s.reviewBlock != nil {
		<-s.reviewBlock
	}
	return s.feedback, s.err
}

func draftSection() models.Section {
	return models.Section{ID: uuid.New(), Title: "Cover Story", Version: 1, Status: models.SectionDraft}
}

func TestSectionEditorReplacesSnapshotWithServerCopy(t *testing.T) {
	snap := draftSection()
	// The server may answer with anything; the editor trusts it verbatim.
	server := snap
	server.Version = 2
	server.ContentText = "normalized by server"
	api := &scriptedSections{next: &server}

	var changed []models.Section
	ed := NewSectionEditor(api, nil, snap, func(s models.Section) { changed = append(changed, s) })

	got, err := ed.Save(context.Background(), "raw text")
	require.NoError(t, err)
	assert.Equal(t, server, got)
	assert.Equal(t, server, ed.Snapshot())
	assert.Equal(t, []models.Section{server}, changed)
	assert.Equal(t, []string{"save:raw text"}, api.calls)
}

func TestSectionEditorKeepsSnapshotOnError(t *testing.T) {
	snap := draftSection()
	rejected := &client.APIError{Status: 409, Detail: "Cannot approve a Draft section.", Code: "illegal_transition"}
	api := &scriptedSections{err: rejected}
	ed := NewSectionEditor(api, nil, snap, nil)

	got, err := ed.Approve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrIllegalTransition)
	assert.NotErrorIs(t, err, client.ErrTransport)
	assert.Equal(t, snap, got)
	assert.Equal(t, snap, ed.Snapshot())

	api.err = &client.TransportError{Op: "save section", Err: errors.New("connection refused")}
	_, err = ed.Save(context.Background(), "x")
	assert.ErrorIs(t, err, client.ErrTransport)
	assert.Equal(t, 1, ed.Snapshot().Version)
}

func TestSectionEditorRefusesReviewWhenLocked(t *testing.T) {
	snap := draftSection()
	snap.Status = models.SectionLocked
	api := &scriptedSections{feedback: "unused"}
	ed := NewSectionEditor(api, nil, snap, nil)

	_, err := ed.Review(context.Background())
	assert.ErrorIs(t, err, ErrSectionLocked)
	assert.Empty(t, api.calls)
	assert.Empty(t, ed.Actions())
}

func TestSectionEditorReviewLeavesSnapshot(t *testing.T) {
	snap := draftSection()
	api := &scriptedSections{feedback: "- Cut the second paragraph"}
	ed := NewSectionEditor(api, nil, snap, nil)

	feedback, err := ed.Review(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "- Cut the second paragraph", feedback)
	assert.Equal(t, snap, ed.Snapshot())
}

func TestSectionEditorRejectsConcurrentCalls(t *testing.T) {
	snap := draftSection()
	next := snap
	next.Status = models.SectionReview
	api := &scriptedSections{next: &next, block: make(chan struct{})}
	pending := &Pending{}
	ed := NewSectionEditor(api, pending, snap, nil)

	errc := make(chan error, 1)
	go func() {
		_, err := ed.Submit(context.Background())
		errc <- err
	}()
	require.Eventually(t, ed.Busy, time.Second, time.Millisecond)

	_, err := ed.Save(context.Background(), "while pending")
	assert.ErrorIs(t, err, ErrBusy)

	close(api.block)
	require.NoError(t, <-errc)
	assert.False(t, ed.Busy())
	assert.Equal(t, models.SectionReview, ed.Snapshot().Status)
}

func TestSectionEditorSavesWhileReviewInFlight(t *testing.T) {
	snap := draftSection()
	saved := snap
	saved.Version = 2
	saved.ContentText = "new text"
	api := &scriptedSections{next: &saved, feedback: "- Tighten the ending", reviewBlock: make(chan struct{})}
	ed := NewSectionEditor(api, nil, snap, nil)

	type reviewResult struct {
		feedback string
		err      error
	}
	results := make(chan reviewResult, 1)
	go func() {
		feedback, err := ed.Review(context.Background())
		results <- reviewResult{feedback, err}
	}()
	require.Eventually(t, ed.Reviewing, time.Second, time.Millisecond)

	got, err := ed.Save(context.Background(), "new text")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.False(t, ed.Busy())

	_, err = ed.Review(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(api.reviewBlock)
	res := <-results
	require.NoError(t, res.err)
	assert.Equal(t, "- Tighten the ending", res.feedback)
	assert.False(t, ed.Reviewing())
	assert.Equal(t, saved, ed.Snapshot())
}
