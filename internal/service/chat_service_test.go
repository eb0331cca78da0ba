package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mediskill/internal/catalog"
	"mediskill/internal/models"
	"mediskill/internal/repository/memory"
	"mediskill/pkg/config"
)

type fakeGenerator struct {
	mu    sync.Mutex
	reply string
	err   error
	delay time.Duration
	calls int
}

func (g *fakeGenerator) Generate(ctx context.Context, userText string, mode models.Mode, snippets []models.Snippet, history []models.Turn) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.delay):
		}
	}
	return g.reply, g.err
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeRetriever struct {
	mu          sync.Mutex
	snippets    []models.Snippet
	retrieveErr error
	remembered  int
	forgotten   int
	retrievals  int
}

func (r *fakeRetriever) Retrieve(ctx context.Context, query string, k int) ([]models.Snippet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retrievals++
	return r.snippets, r.retrieveErr
}

func (r *fakeRetriever) Remember(ctx context.Context, userText, reply string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remembered++
	return nil
}

func (r *fakeRetriever) Forget(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forgotten++
	return nil
}

type fakeHistory struct {
	mu        sync.Mutex
	turns     map[string][]models.Turn
	appendErr error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{turns: make(map[string][]models.Turn)}
}

func (h *fakeHistory) AppendTurn(ctx context.Context, turn *models.Turn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.appendErr != nil {
		return h.appendErr
	}
	h.turns[turn.SessionID] = append(h.turns[turn.SessionID], *turn)
	return nil
}

func (h *fakeHistory) LoadHistory(ctx context.Context, sessionID string) ([]models.Turn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.Turn(nil), h.turns[sessionID]...), nil
}

func (h *fakeHistory) DeleteHistory(ctx context.Context, sessionID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.turns, sessionID)
	return nil
}

func (h *fakeHistory) count(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns[sessionID])
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	feePath := write("fee.json", `{
		"id": "fee_and_packages", "mode": "any", "kind": "fees",
		"title": "Biaya", "columns": ["service", "price"],
		"rows": [{"service": "Konsultasi", "price": "Rp 150.000"}]
	}`)
	facilitiesPath := write("facilities.json", `{
		"id": "facilities_grid", "mode": "medical", "kind": "facilities",
		"title": "Fasilitas", "columns": ["name", "category"],
		"rows": [{"name": "Lab", "category": "Penunjang"}]
	}`)
	locationPath := write("location.json", `{
		"id": "location_directory", "mode": "any", "kind": "location",
		"title": "Lokasi", "columns": ["name", "city", "district", "address"],
		"rows": [
			{"name": "Klinik Menteng", "city": "Jakarta Pusat", "district": "Menteng", "address": "Jl. Cokroaminoto 12"},
			{"name": "Klinik Tebet", "city": "Jakarta Selatan", "district": "Tebet", "address": "Jl. Tebet Raya 88"}
		]
	}`)
	intentsPath := write("intents.json", `{
		"intents": [
			{"name": "ask_price", "mode": "any", "target": "fee_and_packages",
			 "matchers": [{"kind": "substring", "patterns": ["harga", "biaya"]}]},
			{"name": "ask_facilities", "mode": "medical", "target": "facilities_grid",
			 "matchers": [{"kind": "substring", "patterns": ["fasilitas"]}]},
			{"name": "ask_location", "mode": "any", "target": "location_directory",
			 "matchers": [{"kind": "substring", "patterns": ["lokasi", "alamat", "cabang"]}]}
		]
	}`)
	actionsPath := write("quick_actions.json", `{
		"quick_actions": [
			{"id": "ask_price", "label": "Info Biaya", "intent": "ask_price", "scope": "any"},
			{"id": "ask_facilities", "label": "Fasilitas", "intent": "ask_facilities", "scope": "medical"}
		]
	}`)

	cat, err := catalog.Load(catalog.Sources{
		QuickActionsPath: actionsPath,
		IntentRulesPath:  intentsPath,
		PanelPaths:       []string{feePath, facilitiesPath, locationPath},
	})
	require.NoError(t, err)
	return cat
}

func newTestChatService(t *testing.T, gen *fakeGenerator, retr *fakeRetriever, hist *fakeHistory) *ChatService {
	t.Helper()
	cfg := &config.ChatConfig{
		HistoryWindow:     10,
		GenerationTimeout: 2 * time.Second,
		SessionTTL:        time.Hour,
	}
	sessions := memory.NewSessionRepository(cfg.SessionTTL)
	return NewChatService(newTestCatalog(t), sessions, retr, gen, hist, cfg, zap.NewNop())
}

func TestHandleTurnPanelSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{reply: "tidak boleh sampai sini"}
	retr := &fakeRetriever{}
	hist := newFakeHistory()
	svc := newTestChatService(t, gen, retr, hist)

	result, err := svc.HandleTurn(context.Background(), "s1", "berapa biaya konsultasi?", "", "")
	require.NoError(t, err)

	assert.Equal(t, models.ResponsePanel, result.Turn.ResponseMode)
	assert.Equal(t, "fee_and_packages", result.Turn.PanelID)
	assert.Equal(t, "ask_price", result.Turn.Intent)
	require.NotNil(t, result.Panel)
	assert.Equal(t, "fee_and_packages", result.Panel.ID)
	assert.Empty(t, result.Turn.Reply)

	assert.Equal(t, 0, gen.callCount())
	assert.Equal(t, 0, retr.retrievals)
	assert.Equal(t, 1, hist.count("s1"))
}

func TestHandleTurnGenerative(t *testing.T) {
	gen := &fakeGenerator{reply: "Tentu, saya bantu jelaskan."}
	retr := &fakeRetriever{snippets: []models.Snippet{{Content: "jam buka 08-20", Source: "clinic_info"}}}
	hist := newFakeHistory()
	svc := newTestChatService(t, gen, retr, hist)

	result, err := svc.HandleTurn(context.Background(), "s1", "halo, boleh tanya?", "", "")
	require.NoError(t, err)

	assert.Equal(t, models.ResponseGenerative, result.Turn.ResponseMode)
	assert.Equal(t, "Tentu, saya bantu jelaskan.", result.Turn.Reply)
	assert.Equal(t, []string{"jam buka 08-20"}, result.Turn.Snippets)
	assert.Nil(t, result.Panel)
	assert.Equal(t, 1, retr.remembered)
	assert.Equal(t, 1, hist.count("s1"))
}

func TestHandleTurnGenerationErrorFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream 503")}
	retr := &fakeRetriever{}
	hist := newFakeHistory()
	svc := newTestChatService(t, gen, retr, hist)

	result, err := svc.HandleTurn(context.Background(), "s1", "halo", "", "")
	require.NoError(t, err)

	assert.Equal(t, models.ResponseFallback, result.Turn.ResponseMode)
	assert.Equal(t, FallbackMessage, result.Turn.Reply)
	// Fallback turns are never written to dynamic memory, but they are still
	// part of the conversation history.
	assert.Equal(t, 0, retr.remembered)
	assert.Equal(t, 1, hist.count("s1"))
}

func TestHandleTurnGenerationTimeoutFallsBack(t *testing.T) {
	gen := &fakeGenerator{reply: "terlambat", delay: 500 * time.Millisecond}
	retr := &fakeRetriever{}
	hist := newFakeHistory()

	cfg := &config.ChatConfig{
		HistoryWindow:     10,
		GenerationTimeout: 50 * time.Millisecond,
		SessionTTL:        time.Hour,
	}
	sessions := memory.NewSessionRepository(cfg.SessionTTL)
	svc := NewChatService(newTestCatalog(t), sessions, retr, gen, hist, cfg, zap.NewNop())

	result, err := svc.HandleTurn(context.Background(), "s1", "halo", "", "")
	require.NoError(t, err)

	assert.Equal(t, models.ResponseFallback, result.Turn.ResponseMode)
	assert.Equal(t, FallbackMessage, result.Turn.Reply)
}

func TestHandleTurnRetrievalFailureDegrades(t *testing.T) {
	gen := &fakeGenerator{reply: "jawaban tanpa konteks"}
	retr := &fakeRetriever{retrieveErr: errors.New("db down")}
	hist := newFakeHistory()
	svc := newTestChatService(t, gen, retr, hist)

	result, err := svc.HandleTurn(context.Background(), "s1", "halo", "", "")
	require.NoError(t, err)

	assert.Equal(t, models.ResponseGenerative, result.Turn.ResponseMode)
	assert.Equal(t, "jawaban tanpa konteks", result.Turn.Reply)
	assert.Empty(t, result.Turn.Snippets)
}

func TestHandleTurnCrossModeQuickActionDowngrades(t *testing.T) {
	gen := &fakeGenerator{reply: "info fasilitas secara umum"}
	retr := &fakeRetriever{}
	hist := newFakeHistory()
	svc := newTestChatService(t, gen, retr, hist)

	// A medical-only panel requested from a softskills session: the click
	// resolves, the router refuses the panel, the turn completes generatively.
	result, err := svc.HandleTurn(context.Background(), "s1", "", "ask_facilities", models.ModeSoftSkills)
	require.NoError(t, err)

	assert.Equal(t, models.ResponseGenerative, result.Turn.ResponseMode)
	assert.Nil(t, result.Panel)
	assert.Equal(t, "ask_facilities", result.Turn.Intent)
	assert.Equal(t, 1, gen.callCount())
}

func TestHandleTurnLocationPanelFiltered(t *testing.T) {
	gen := &fakeGenerator{}
	retr := &fakeRetriever{}
	hist := newFakeHistory()
	svc := newTestChatService(t, gen, retr, hist)

	result, err := svc.HandleTurn(context.Background(), "s1", "alamat cabang di tebet?", "", "")
	require.NoError(t, err)

	assert.Equal(t, models.ResponsePanel, result.Turn.ResponseMode)
	require.NotNil(t, result.Panel)
	require.Len(t, result.Panel.Rows, 1)
	assert.Equal(t, "Klinik Tebet", result.Panel.Rows[0]["name"])
}

func TestHandleTurnPersistFailureStillReturnsTurn(t *testing.T) {
	gen := &fakeGenerator{reply: "jawaban"}
	retr := &fakeRetriever{}
	hist := newFakeHistory()
	hist.appendErr = errors.New("insert failed")
	svc := newTestChatService(t, gen, retr, hist)

	result, err := svc.HandleTurn(context.Background(), "s1", "halo", "", "")
	require.NoError(t, err)
	assert.Equal(t, "jawaban", result.Turn.Reply)
}

func TestHandleTurnModeSwitch(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	retr := &fakeRetriever{}
	hist := newFakeHistory()
	svc := newTestChatService(t, gen, retr, hist)

	first, err := svc.HandleTurn(context.Background(), "s1", "halo", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.ModeMedical, first.Mode)

	second, err := svc.HandleTurn(context.Background(), "s1", "ada pelatihan?", "", models.ModeSoftSkills)
	require.NoError(t, err)
	assert.Equal(t, models.ModeSoftSkills, second.Mode)

	// The earlier turn keeps the response it was given.
	turns, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, first.Turn.ID, turns[0].ID)
	assert.Equal(t, first.Turn.Reply, turns[0].Reply)
}

func TestHandleTurnWarmsSessionFromHistory(t *testing.T) {
	gen := &fakeGenerator{reply: "lanjutan"}
	retr := &fakeRetriever{}
	hist := newFakeHistory()
	hist.turns["s1"] = []models.Turn{
		{SessionID: "s1", UserText: "halo", Reply: "hai", ResponseMode: models.ResponseGenerative},
	}
	svc := newTestChatService(t, gen, retr, hist)

	_, err := svc.HandleTurn(context.Background(), "s1", "lanjut dong", "", "")
	require.NoError(t, err)

	session, ok := svc.sessions.Get("s1")
	require.True(t, ok)
	assert.Len(t, session.Turns, 2)
}

func TestConcurrentSessionsAreIndependent(t *testing.T) {
	gen := &fakeGenerator{reply: "ok", delay: 20 * time.Millisecond}
	retr := &fakeRetriever{}
	hist := newFakeHistory()
	svc := newTestChatService(t, gen, retr, hist)

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(sessionID string) {
			defer wg.Done()
			for i := 0; i < 3; i++ {
				_, err := svc.HandleTurn(context.Background(), sessionID, "halo", "", "")
				assert.NoError(t, err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, 3, hist.count(id))
	}
}

func TestResetClearsSessionAndHistory(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	retr := &fakeRetriever{}
	hist := newFakeHistory()
	svc := newTestChatService(t, gen, retr, hist)

	_, err := svc.HandleTurn(context.Background(), "s1", "halo", "", "")
	require.NoError(t, err)
	require.Equal(t, 1, hist.count("s1"))

	require.NoError(t, svc.Reset(context.Background(), "s1"))
	assert.Equal(t, 0, hist.count("s1"))
	_, ok := svc.sessions.Get("s1")
	assert.False(t, ok)
	// The knowledge store is untouched by a session reset.
	assert.Equal(t, 0, retr.forgotten)
}

func TestClearMemory(t *testing.T) {
	retr := &fakeRetriever{}
	svc := newTestChatService(t, &fakeGenerator{}, retr, newFakeHistory())

	require.NoError(t, svc.ClearMemory(context.Background()))
	assert.Equal(t, 1, retr.forgotten)
}

func TestPreview(t *testing.T) {
	svc := newTestChatService(t, &fakeGenerator{}, &fakeRetriever{}, newFakeHistory())

	panel := svc.Preview("berapa harga paket?", models.ModeMedical)
	require.NotNil(t, panel)
	assert.Equal(t, "fee_and_packages", panel.ID)

	assert.Nil(t, svc.Preview("halo apa kabar", models.ModeMedical))
	// Mode-mismatched targets never preview a panel either.
	assert.Nil(t, svc.Preview("fasilitas apa saja?", models.ModeSoftSkills))
}
