package bot

import (
	"context"
	stdErrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/adapter"
	"github.com/kapu/poketeam-kakao-bot/internal/config"
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/iris"
	"github.com/kapu/poketeam-kakao-bot/internal/service/analysis"
	"github.com/kapu/poketeam-kakao-bot/internal/service/catalog"
)

type sent struct {
	room    string
	message string
}

type fakeSender struct {
	ch chan sent
}

func (f *fakeSender) SendMessage(_ context.Context, room, message string) error {
	f.ch <- sent{room: room, message: message}
	return nil
}

type fakeSource struct {
	mu           sync.Mutex
	callback     iris.MessageCallback
	connectErr   error
	disconnected bool
}

func (f *fakeSource) Connect(context.Context) error { return f.connectErr }

func (f *fakeSource) OnMessage(cb iris.MessageCallback) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callback = cb
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.callback = nil
	}
}

func (f *fakeSource) Disconnect() error {
	f.disconnected = true
	return nil
}

func (f *fakeSource) emit(msg *iris.Message) {
	f.mu.Lock()
	cb := f.callback
	f.mu.Unlock()
	if cb != nil {
		cb(msg)
	}
}

type fakeCatalog struct{}

func (fakeCatalog) GetCreature(_ context.Context, name string) (*domain.Creature, error) {
	if name == "pikachu" {
		return &domain.Creature{ID: 25, Name: "pikachu", Types: []domain.ElementalType{domain.TypeElectric}}, nil
	}
	return nil, nil
}

func (fakeCatalog) ListCreatures(context.Context, int, int) (*catalog.ListPage, error) {
	return &catalog.ListPage{}, nil
}

func (fakeCatalog) ListCreaturesByType(context.Context, domain.ElementalType, int, int) (*catalog.ListPage, error) {
	return &catalog.ListPage{}, nil
}

func (fakeCatalog) GetSpecies(context.Context, string) (*catalog.Species, error) {
	return nil, stdErrors.New("offline")
}

func (fakeCatalog) GetEvolutionChain(context.Context, string) ([]catalog.EvolutionStage, error) {
	return nil, nil
}

func (fakeCatalog) GetAbility(context.Context, string) (*catalog.AbilityInfo, error) {
	return nil, stdErrors.New("offline")
}

type fakeTeam struct {
	mu     sync.Mutex
	owners []string
}

func (f *fakeTeam) Get(_ context.Context, owner string) domain.Roster {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners = append(f.owners, owner)
	return domain.Roster{}
}

func (f *fakeTeam) Add(context.Context, string, string) (domain.Roster, *domain.Creature, error) {
	return domain.Roster{}, nil, stdErrors.New("not used")
}

func (f *fakeTeam) Remove(context.Context, string, string) (domain.Roster, bool, error) {
	return domain.Roster{}, false, nil
}

func (f *fakeTeam) Clear(context.Context, string) (int, error) { return 0, nil }

func (f *fakeTeam) Analyze(context.Context, string) *analysis.Report {
	return analysis.Analyze(domain.Roster{})
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

func newTestBot(t *testing.T, rooms ...string) (*Bot, *fakeSource, *fakeSender, *fakeTeam) {
	t.Helper()
	source := &fakeSource{}
	sender := &fakeSender{ch: make(chan sent, 4)}
	team := &fakeTeam{}
	b, err := NewBot(&Dependencies{
		Config:         &config.Config{Kakao: config.KakaoConfig{Rooms: rooms}},
		Logger:         zap.NewNop(),
		IrisClient:     sender,
		IrisWebSocket:  source,
		MessageAdapter: adapter.NewMessageAdapter("!"),
		Formatter:      adapter.NewResponseFormatter("!"),
		Catalog:        fakeCatalog{},
		Team:           team,
	})
	require.NoError(t, err)
	return b, source, sender, team
}

func startBot(t *testing.T, b *Bot) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan error, 1)
	go func() { started <- b.Start(ctx) }()
	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.unsubscribe != nil
	}, time.Second, 5*time.Millisecond)
	t.Cleanup(func() {
		cancel()
		<-started
	})
	return cancel
}

func waitSent(t *testing.T, sender *fakeSender) sent {
	t.Helper()
	select {
	case s := <-sender.ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no message sent")
		return sent{}
	}
}

func senderName(s string) *string { return &s }

func TestNewBotValidatesDependencies(t *testing.T) {
	_, err := NewBot(nil)
	assert.Error(t, err)

	_, err = NewBot(&Dependencies{IrisClient: &fakeSender{}})
	assert.Error(t, err)
}

func TestBotRoutesCommands(t *testing.T) {
	b, source, sender, team := newTestBot(t, "Pallet")
	startBot(t, b)

	source.emit(&iris.Message{
		Msg:    "!팀",
		Room:   "Pallet",
		Sender: senderName("Ash"),
		JSON:   &iris.MessageJSON{UserID: "u-1", ChatID: "chat-9"},
	})

	reply := waitSent(t, sender)
	assert.Equal(t, "chat-9", reply.room)
	assert.Contains(t, reply.message, "팀이 비어 있습니다")

	team.mu.Lock()
	assert.Equal(t, []string{"chat-9:u-1"}, team.owners)
	team.mu.Unlock()

	source.emit(&iris.Message{Msg: "!도감 pikachu", Room: "Pallet", Sender: senderName("Ash")})
	reply = waitSent(t, sender)
	assert.Contains(t, reply.message, "No.25 Pikachu")
}

func TestBotIgnoresOtherRoomsAndChatter(t *testing.T) {
	b, source, sender, _ := newTestBot(t, "Pallet")
	startBot(t, b)

	source.emit(&iris.Message{Msg: "!팀", Room: "Viridian", Sender: senderName("Gary")})
	source.emit(&iris.Message{Msg: "hello", Room: "Pallet", Sender: senderName("Ash")})
	source.emit(nil)

	select {
	case s := <-sender.ch:
		t.Fatalf("unexpected reply: %+v", s)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBotStartFailsWhenConnectFails(t *testing.T) {
	b, source, _, _ := newTestBot(t)
	source.connectErr = stdErrors.New("refused")

	err := b.Start(context.Background())
	assert.ErrorContains(t, err, "refused")
}

func TestBotShutdownClosesResources(t *testing.T) {
	b, source, _, _ := newTestBot(t)
	closed := 0
	b.deps.Closers = append(b.deps.Closers,
		closerFunc(func() error { closed++; return nil }),
		nil,
		closerFunc(func() error { closed++; return stdErrors.New("close failed") }),
	)

	err := b.Shutdown(context.Background())
	assert.ErrorContains(t, err, "close failed")
	assert.Equal(t, 2, closed)
	assert.True(t, source.disconnected)
}
