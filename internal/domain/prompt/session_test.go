package prompt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) SendMessage(_ context.Context, _ snowflake.ID, content string) (snowflake.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, content)
	return snowflake.ID(len(r.sent)), nil
}

func (r *recordingSender) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

func createQuestions() []Question {
	return []Question{
		{Name: "user", Text: "Who is the slot for?", Parse: ParseUser},
		{Name: "days", Text: "How many days?", Parse: ParseDays},
		{Name: "name", Text: "Channel name?", Parse: ParseText},
	}
}

func TestManager_CompletesInOrder(t *testing.T) {
	sender := &recordingSender{}
	m := NewManager(sender, time.Minute)
	ctx := context.Background()
	key := Key{UserID: 1, ChannelID: 2}

	done := make(chan Answers, 1)
	require.NoError(t, m.Start(ctx, key, Session{
		Questions:  createQuestions(),
		OnComplete: func(_ context.Context, a Answers) { done <- a },
	}))

	// Other users and channels are ignored.
	assert.False(t, m.Feed(ctx, Key{UserID: 9, ChannelID: 2}, "<@123>"))
	assert.False(t, m.Feed(ctx, Key{UserID: 1, ChannelID: 9}, "<@123>"))

	assert.True(t, m.Feed(ctx, key, "<@!123456789012345678>"))
	assert.True(t, m.Feed(ctx, key, "seven"))
	assert.True(t, m.Feed(ctx, key, "7"))
	assert.True(t, m.Feed(ctx, key, "  drop zone "))

	select {
	case a := <-done:
		assert.Equal(t, snowflake.ID(123456789012345678), a["user"])
		assert.Equal(t, 7, a["days"])
		assert.Equal(t, "drop zone", a["name"])
	default:
		t.Fatal("OnComplete did not run")
	}

	msgs := sender.messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "Who is the slot for?", msgs[0])
	assert.Equal(t, "How many days?", msgs[1])
	assert.Contains(t, msgs[2], "❌")
	assert.Contains(t, msgs[2], "How many days?")
	assert.Equal(t, "Channel name?", msgs[3])

	assert.False(t, m.Active(key))
	assert.False(t, m.Feed(ctx, key, "extra"))
}

func TestManager_Timeout(t *testing.T) {
	m := NewManager(&recordingSender{}, 20*time.Millisecond)
	key := Key{UserID: 1, ChannelID: 2}

	timedOut := make(chan error, 1)
	completed := false
	require.NoError(t, m.Start(context.Background(), key, Session{
		Questions:  createQuestions(),
		OnComplete: func(context.Context, Answers) { completed = true },
		OnTimeout:  func(_ context.Context, err error) { timedOut <- err },
	}))

	select {
	case err := <-timedOut:
		assert.ErrorIs(t, err, ErrTimeout)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not time out")
	}
	assert.False(t, completed)
	assert.False(t, m.Active(key))
	assert.False(t, m.Feed(context.Background(), key, "<@1>"))
}

func TestManager_TimeoutPostsDefaultText(t *testing.T) {
	sender := &recordingSender{}
	m := NewManager(sender, 10*time.Millisecond)
	key := Key{UserID: 1, ChannelID: 2}
	require.NoError(t, m.Start(context.Background(), key, Session{Questions: createQuestions()}))

	require.Eventually(t, func() bool {
		msgs := sender.messages()
		return len(msgs) == 2 && msgs[1] == TimeoutText
	}, 2*time.Second, 5*time.Millisecond)
}

func TestManager_RestartReplacesSession(t *testing.T) {
	m := NewManager(&recordingSender{}, time.Minute)
	ctx := context.Background()
	key := Key{UserID: 1, ChannelID: 2}

	var first, second bool
	require.NoError(t, m.Start(ctx, key, Session{
		Questions:  []Question{{Name: "name", Text: "first?", Parse: ParseText}},
		OnComplete: func(context.Context, Answers) { first = true },
	}))
	require.NoError(t, m.Start(ctx, key, Session{
		Questions:  []Question{{Name: "name", Text: "second?", Parse: ParseText}},
		OnComplete: func(context.Context, Answers) { second = true },
	}))
	assert.Equal(t, 1, m.Len())

	assert.True(t, m.Feed(ctx, key, "hello"))
	assert.False(t, first)
	assert.True(t, second)
}

func TestManager_Cancel(t *testing.T) {
	m := NewManager(nil, time.Minute)
	key := Key{UserID: 1, ChannelID: 2}
	require.NoError(t, m.Start(context.Background(), key, Session{Questions: createQuestions()}))

	assert.True(t, m.Cancel(key))
	assert.False(t, m.Cancel(key))
	assert.Equal(t, 0, m.Len())
}

func TestParsers(t *testing.T) {
	tests := []struct {
		name    string
		parse   func(string) (any, error)
		input   string
		want    any
		wantErr bool
	}{
		{"user mention", ParseUser, "<@42>", snowflake.ID(42), false},
		{"user nick mention", ParseUser, "<@!42>", snowflake.ID(42), false},
		{"user raw id", ParseUser, " 42 ", snowflake.ID(42), false},
		{"user garbage", ParseUser, "bob", nil, true},
		{"days", ParseDays, "30", 30, false},
		{"days zero", ParseDays, "0", nil, true},
		{"days too many", ParseDays, "366", nil, true},
		{"text", ParseText, " hi ", "hi", false},
		{"text empty", ParseText, "   ", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
