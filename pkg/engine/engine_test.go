package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"chatportal/pkg/llm"
	"chatportal/pkg/models"
	"chatportal/pkg/store"
)

// fakeGateway records every call and answers from a canned script.
type fakeGateway struct {
	mu        sync.Mutex
	calls     int
	sessions  []string
	prompts   []string
	forgotten []string
	result    llm.Result
}

func (f *fakeGateway) Complete(_ context.Context, session, _, prompt string) llm.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.sessions = append(f.sessions, session)
	f.prompts = append(f.prompts, prompt)
	return f.result
}

func (f *fakeGateway) Forget(session string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgotten = append(f.forgotten, session)
}

func newTestEngine(t *testing.T, g llm.Gateway) (*Engine, *store.Store) {
	t.Helper()
	s, err := store.Open(t.TempDir() + "/db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s, g), s
}

func TestCreateStartsActive(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGateway{})

	c, err := e.Create("morning chat")
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	require.Equal(t, models.StatusActive, c.Status)
	require.Empty(t, c.Summary)
	require.Nil(t, c.EndTime)
	require.False(t, c.StartTime.IsZero())
}

func TestListNewestFirst(t *testing.T) {
	e, s := newTestEngine(t, &fakeGateway{})

	first, err := e.Create("older")
	require.NoError(t, err)
	second, err := e.Create("newer")
	require.NoError(t, err)
	// force a strict ordering regardless of clock resolution
	c2, err := s.GetConversation(second.ID)
	require.NoError(t, err)
	c2.StartTime = first.StartTime.Add(1)
	require.NoError(t, s.SaveConversation(c2))

	out, err := e.List()
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "newer", out[0].Title)
	require.Equal(t, "older", out[1].Title)
}

func TestAppendUserMessagePersistsBothTurns(t *testing.T) {
	g := &fakeGateway{result: llm.Result{Text: "the capital of France is Paris"}}
	e, _ := newTestEngine(t, g)

	c, err := e.Create("geography")
	require.NoError(t, err)

	ai, err := e.AppendUserMessage(context.Background(), c.ID, "capital of France?")
	require.NoError(t, err)
	require.Equal(t, models.RoleAssistant, ai.Role)
	require.Equal(t, "the capital of France is Paris", ai.Content)

	msgs, err := e.Messages(c.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, models.RoleUser, msgs[0].Role)
	require.Equal(t, "capital of France?", msgs[0].Content)
	require.Equal(t, models.RoleAssistant, msgs[1].Role)

	got, err := e.Conversation(c.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusActive, got.Status)

	// the prompt is the latest user turn; memory lives in the gateway session
	require.Equal(t, []string{"capital of France?"}, g.prompts)
	require.Equal(t, []string{c.ID}, g.sessions)
}

func TestAppendDegradedReplyStillPersisted(t *testing.T) {
	g := &fakeGateway{result: llm.Result{Text: "Error generating response: upstream status 500", Degraded: true}}
	e, _ := newTestEngine(t, g)

	c, err := e.Create("flaky")
	require.NoError(t, err)

	ai, err := e.AppendUserMessage(context.Background(), c.ID, "hello?")
	require.NoError(t, err)
	require.Equal(t, "Error generating response: upstream status 500", ai.Content)

	msgs, err := e.Messages(c.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
}

func TestAppendToEndedRejected(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGateway{result: llm.Result{Text: "summary"}})

	c, err := e.Create("done soon")
	require.NoError(t, err)
	_, err = e.End(context.Background(), c.ID)
	require.NoError(t, err)

	_, err = e.AppendUserMessage(context.Background(), c.ID, "still there?")
	require.ErrorIs(t, err, ErrInvalidState)

	msgs, err := e.Messages(c.ID)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestAppendToMissingConversation(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGateway{})

	_, err := e.AppendUserMessage(context.Background(), "ghost", "anyone?")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReactToggleRoundTrip(t *testing.T) {
	e, s := newTestEngine(t, &fakeGateway{result: llm.Result{Text: "ok"}})

	c, err := e.Create("reactions")
	require.NoError(t, err)
	ai, err := e.AppendUserMessage(context.Background(), c.ID, "hi")
	require.NoError(t, err)

	reactions, err := e.React(ai.ID, "👍")
	require.NoError(t, err)
	require.Equal(t, []string{"👍"}, reactions)

	reactions, err = e.React(ai.ID, "❤️")
	require.NoError(t, err)
	require.Equal(t, []string{"👍", "❤️"}, reactions)

	// toggling an applied symbol removes it
	reactions, err = e.React(ai.ID, "👍")
	require.NoError(t, err)
	require.Equal(t, []string{"❤️"}, reactions)

	got, err := s.GetMessage(ai.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"❤️"}, got.Reactions)
}

func TestBookmarkToggleRoundTrip(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGateway{result: llm.Result{Text: "ok"}})

	c, err := e.Create("bookmarks")
	require.NoError(t, err)
	ai, err := e.AppendUserMessage(context.Background(), c.ID, "hi")
	require.NoError(t, err)

	on, err := e.Bookmark(ai.ID)
	require.NoError(t, err)
	require.True(t, on)

	off, err := e.Bookmark(ai.ID)
	require.NoError(t, err)
	require.False(t, off)
}

func TestReactMissingMessage(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGateway{})

	_, err := e.React("ghost", "👍")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.Bookmark("ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestShareLastCallWins(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGateway{})

	c, err := e.Create("shared")
	require.NoError(t, err)

	tok1, err := e.Share(c.ID)
	require.NoError(t, err)
	tok2, err := e.Share(c.ID)
	require.NoError(t, err)
	require.NotEqual(t, tok1, tok2)

	// the latest token resolves, the superseded one does not
	v, err := e.GetByShareToken(tok2)
	require.NoError(t, err)
	require.Equal(t, c.ID, v.Conversation.ID)

	_, err = e.GetByShareToken(tok1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSharedViewMatchesDirectView(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGateway{result: llm.Result{Text: "reply"}})

	c, err := e.Create("window")
	require.NoError(t, err)
	_, err = e.AppendUserMessage(context.Background(), c.ID, "hello")
	require.NoError(t, err)
	tok, err := e.Share(c.ID)
	require.NoError(t, err)

	shared, err := e.GetByShareToken(tok)
	require.NoError(t, err)
	direct, err := e.Messages(c.ID)
	require.NoError(t, err)
	require.Equal(t, direct, shared.Messages)
	require.Empty(t, shared.Suggestions)
}

func TestGetViewIncludesSuggestionsWhenActive(t *testing.T) {
	g := &fakeGateway{result: llm.Result{Text: "One?\nTwo?\nThree?"}}
	e, _ := newTestEngine(t, g)

	c, err := e.Create("suggesting")
	require.NoError(t, err)
	_, err = e.AppendUserMessage(context.Background(), c.ID, "hi")
	require.NoError(t, err)

	v, err := e.Get(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"One?", "Two?", "Three?"}, v.Suggestions)
}

func TestGetViewNoSuggestionsAfterEnd(t *testing.T) {
	g := &fakeGateway{result: llm.Result{Text: "whatever"}}
	e, _ := newTestEngine(t, g)

	c, err := e.Create("quiet")
	require.NoError(t, err)
	_, err = e.AppendUserMessage(context.Background(), c.ID, "hi")
	require.NoError(t, err)
	_, err = e.End(context.Background(), c.ID)
	require.NoError(t, err)

	before := g.calls
	v, err := e.Get(context.Background(), c.ID)
	require.NoError(t, err)
	require.Empty(t, v.Suggestions)
	require.Equal(t, before, g.calls)
}
