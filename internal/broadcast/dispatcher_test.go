package broadcast

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"morningbot/internal/content"
	"morningbot/internal/domain"
	"morningbot/internal/guard"
)

type fakeRegistry struct {
	chats []domain.Chat
	err   error
	calls int
}

func (f *fakeRegistry) ListChats(context.Context) ([]domain.Chat, error) {
	f.calls++
	return f.chats, f.err
}

type fakeSource struct {
	mu          sync.Mutex
	bundleCalls int
	quoteCalls  int
}

func (f *fakeSource) Bundle(_ context.Context, topic string) content.Bundle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bundleCalls++
	return content.Bundle{
		Quote:    content.Quote{Text: "мудрость", Author: "автор"},
		ImageURL: "https://img.example/" + topic,
	}
}

func (f *fakeSource) Quote(context.Context) content.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteCalls++
	return content.Quote{Text: "мудрость", Author: ""}
}

type sentPhoto struct {
	chatID   int64
	imageURL string
	caption  string
}

type fakeSender struct {
	mu        sync.Mutex
	photos    []sentPhoto
	texts     map[int64][]string
	failPhoto map[int64]error
	failText  map[int64]error
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		texts:     map[int64][]string{},
		failPhoto: map[int64]error{},
		failText:  map[int64]error{},
	}
}

func (f *fakeSender) SendPhoto(chatID int64, imageURL, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failPhoto[chatID]; err != nil {
		return err
	}
	f.photos = append(f.photos, sentPhoto{chatID, imageURL, caption})
	return nil
}

func (f *fakeSender) SendText(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failText[chatID]; err != nil {
		return err
	}
	f.texts[chatID] = append(f.texts[chatID], text)
	return nil
}

func newTestDispatcher(reg *fakeRegistry, src *fakeSource, snd *fakeSender, clock clockwork.Clock) *Dispatcher {
	log := zap.NewNop()
	return New(reg, src, snd,
		guard.New("broadcast", time.Minute, log, clock),
		guard.New("citation", time.Second, log, clock),
		log,
	)
}

func TestRun_FanOutDeliversToAllChats(t *testing.T) {
	reg := &fakeRegistry{chats: []domain.Chat{{ChatID: 1}, {ChatID: 2}, {ChatID: 3}}}
	src := &fakeSource{}
	snd := newFakeSender()
	d := newTestDispatcher(reg, src, snd, clockwork.NewFakeClock())

	require.True(t, d.Run(context.Background(), KindMorning))

	require.Len(t, snd.photos, 3)
	assert.Equal(t, 1, src.bundleCalls, "exactly one content fetch per cycle")
	// every chat gets the same cycle bundle
	for _, p := range snd.photos {
		assert.Equal(t, "https://img.example/good morning", p.imageURL)
		assert.Equal(t, snd.photos[0].caption, p.caption)
	}
}

func TestRun_FailedSendDoesNotAbortFanOut(t *testing.T) {
	reg := &fakeRegistry{chats: []domain.Chat{{ChatID: 1}, {ChatID: 2}, {ChatID: 3}}}
	src := &fakeSource{}
	snd := newFakeSender()
	snd.failPhoto[1] = errors.New("blocked by user")
	d := newTestDispatcher(reg, src, snd, clockwork.NewFakeClock())

	require.True(t, d.Run(context.Background(), KindMorning))

	require.Len(t, snd.photos, 2)
	assert.Equal(t, int64(2), snd.photos[0].chatID)
	assert.Equal(t, int64(3), snd.photos[1].chatID)
}

func TestRun_EmptyRegistryCompletesWithNoSends(t *testing.T) {
	reg := &fakeRegistry{}
	src := &fakeSource{}
	snd := newFakeSender()
	d := newTestDispatcher(reg, src, snd, clockwork.NewFakeClock())

	require.True(t, d.Run(context.Background(), KindEvening))
	assert.Empty(t, snd.photos)
	assert.Equal(t, 1, src.bundleCalls)
}

func TestRun_SecondTriggerInsideDebounceIsDropped(t *testing.T) {
	reg := &fakeRegistry{chats: []domain.Chat{{ChatID: 1}}}
	src := &fakeSource{}
	snd := newFakeSender()
	d := newTestDispatcher(reg, src, snd, clockwork.NewFakeClock())

	assert.True(t, d.Run(context.Background(), KindMorning))
	assert.False(t, d.Run(context.Background(), KindMorning), "duplicate trigger must be absorbed")
	assert.Equal(t, 1, src.bundleCalls)
	assert.Len(t, snd.photos, 1)
}

func TestRun_EveningUsesNightTopicAndHeader(t *testing.T) {
	reg := &fakeRegistry{chats: []domain.Chat{{ChatID: 5}}}
	src := &fakeSource{}
	snd := newFakeSender()
	d := newTestDispatcher(reg, src, snd, clockwork.NewFakeClock())

	require.True(t, d.Run(context.Background(), KindEvening))
	require.Len(t, snd.photos, 1)
	assert.Equal(t, "https://img.example/good night", snd.photos[0].imageURL)
	assert.True(t, strings.HasPrefix(snd.photos[0].caption, `*Доброй ночи\!*`))
}

func TestCitation_SendsQuoteOnlyToRequester(t *testing.T) {
	reg := &fakeRegistry{chats: []domain.Chat{{ChatID: 1}, {ChatID: 2}}}
	src := &fakeSource{}
	snd := newFakeSender()
	d := newTestDispatcher(reg, src, snd, clockwork.NewFakeClock())

	require.True(t, d.Citation(context.Background(), 2))

	assert.Empty(t, snd.photos, "citation sends no photo")
	assert.Empty(t, snd.texts[1])
	require.Len(t, snd.texts[2], 1)
	assert.Contains(t, snd.texts[2][0], "мудрость")
	assert.Contains(t, snd.texts[2][0], "Неизвестный автор")
	assert.Equal(t, 0, reg.calls, "citation never touches the registry")
}

func TestCitation_DoubleTapWithinOneSecondDropped(t *testing.T) {
	src := &fakeSource{}
	snd := newFakeSender()
	d := newTestDispatcher(&fakeRegistry{}, src, snd, clockwork.NewFakeClock())

	assert.True(t, d.Citation(context.Background(), 9))
	assert.False(t, d.Citation(context.Background(), 9))
	assert.Len(t, snd.texts[9], 1)
	assert.Equal(t, 1, src.quoteCalls)
}

func TestCitation_IndependentOfBroadcastGuard(t *testing.T) {
	src := &fakeSource{}
	snd := newFakeSender()
	d := newTestDispatcher(&fakeRegistry{chats: []domain.Chat{{ChatID: 1}}}, src, snd, clockwork.NewFakeClock())

	require.True(t, d.Run(context.Background(), KindMorning))
	assert.True(t, d.Citation(context.Background(), 1),
		"a just-finished broadcast must not debounce the citation path")
}
