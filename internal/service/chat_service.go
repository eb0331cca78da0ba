package service

import (
	"context"
	"time"

	"mediskill/internal/catalog"
	"mediskill/internal/intent"
	"mediskill/internal/models"
	"mediskill/internal/repository/memory"
	"mediskill/internal/routing"
	"mediskill/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FallbackMessage is returned whenever a generative turn cannot be
// completed. Users never see a raw error.
const FallbackMessage = "Maaf, MediSkill AI sedang tidak dapat memproses permintaan Anda. " +
	"Silakan coba beberapa saat lagi, atau gunakan tombol cepat di bawah untuk " +
	"info biaya, fasilitas, lokasi, dan pelatihan soft skills."

// Generator is the generation collaborator. The history passed in is already
// bounded; exceeding the caller's deadline counts as a failure.
type Generator interface {
	Generate(ctx context.Context, userText string, mode models.Mode, snippets []models.Snippet, history []models.Turn) (string, error)
}

// ContextProvider is the retrieval collaborator. Retrieve must tolerate an
// empty store. Implemented by RAGService.
type ContextProvider interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.Snippet, error)
	Remember(ctx context.Context, userText, reply string) error
	Forget(ctx context.Context) error
}

// HistoryStore is the persistence collaborator: append plus full read, in
// completion order. Implemented by repository.HistoryRepository.
type HistoryStore interface {
	AppendTurn(ctx context.Context, turn *models.Turn) error
	LoadHistory(ctx context.Context, sessionID string) ([]models.Turn, error)
	DeleteHistory(ctx context.Context, sessionID string) error
}

// TurnResult is one completed turn plus the payload the transport needs:
// the (possibly row-filtered) panel and the mode the turn ran under.
type TurnResult struct {
	Turn  models.Turn
	Panel *models.Panel
	Mode  models.Mode
}

// ChatService is the conversation orchestrator. Per turn it resolves the
// intent, asks the router for a decision, runs retrieval+generation only
// when required, and appends the completed turn to the session history.
type ChatService struct {
	catalog   *catalog.Catalog
	engine    *intent.Engine
	sessions  *memory.SessionRepository
	retriever ContextProvider
	generator Generator
	history   HistoryStore
	config    *config.ChatConfig
	logger    *zap.Logger
}

func NewChatService(
	cat *catalog.Catalog,
	sessions *memory.SessionRepository,
	retriever ContextProvider,
	generator Generator,
	history HistoryStore,
	cfg *config.ChatConfig,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		catalog:   cat,
		engine:    intent.NewEngine(cat),
		sessions:  sessions,
		retriever: retriever,
		generator: generator,
		history:   history,
		config:    cfg,
		logger:    logger,
	}
}

// HandleTurn processes one user turn start-to-finish. Turns of one session
// run strictly sequentially under the session lock; distinct sessions are
// independent. A requested mode that differs from the session's switches the
// session before the turn is processed; past turns are never changed.
func (s *ChatService) HandleTurn(ctx context.Context, sessionID, userText, explicitActionID string, requestedMode models.Mode) (*TurnResult, error) {
	defaultMode := requestedMode
	if defaultMode == "" {
		defaultMode = models.ModeMedical
	}

	session, created := s.sessions.GetOrCreate(sessionID, defaultMode)
	session.Lock()
	defer session.Unlock()

	if created {
		s.warmSession(ctx, session)
	}
	if requestedMode != "" && requestedMode != session.Mode {
		s.logger.Info("Session mode switched",
			zap.String("session_id", sessionID),
			zap.String("from", string(session.Mode)),
			zap.String("to", string(requestedMode)),
		)
		session.Mode = requestedMode
	}
	mode := session.Mode

	resolved := s.engine.Resolve(userText, explicitActionID, mode)
	decision := routing.Decide(resolved, mode, s.catalog)

	turn := models.Turn{
		ID:        uuid.New(),
		SessionID: sessionID,
		UserText:  userText,
	}
	if resolved != nil {
		turn.Intent = resolved.Name
	}

	var panel *models.Panel
	switch decision.Kind {
	case routing.DecisionShowPanel:
		// Panels are canonical pre-authored content; no retrieval or
		// generation happens for this turn.
		panel = routing.FilterLocationPanel(decision.Panel, userText)
		turn.ResponseMode = models.ResponsePanel
		turn.PanelID = panel.ID
	case routing.DecisionUnresolvedIntent:
		s.logger.Warn("Unresolved intent, downgrading to generative",
			zap.String("session_id", sessionID),
			zap.String("anomaly", decision.Anomaly),
		)
		s.generativeTurn(ctx, &turn, userText, mode, session)
	default:
		s.generativeTurn(ctx, &turn, userText, mode, session)
	}

	turn.CreatedAt = time.Now()
	session.Append(turn)

	if err := s.history.AppendTurn(ctx, &turn); err != nil {
		// Recoverable: the completed turn is still returned.
		s.logger.Error("Failed to persist turn",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	return &TurnResult{Turn: turn, Panel: panel, Mode: mode}, nil
}

func (s *ChatService) generativeTurn(ctx context.Context, turn *models.Turn, userText string, mode models.Mode, session *models.Session) {
	snippets, err := s.retriever.Retrieve(ctx, userText, 0)
	if err != nil {
		// Retrieval failure degrades to generation without context.
		s.logger.Warn("Retrieval failed", zap.Error(err))
		snippets = nil
	}

	genCtx, cancel := context.WithTimeout(ctx, s.config.GenerationTimeout)
	defer cancel()

	reply, err := s.generator.Generate(genCtx, userText, mode, snippets, session.Window(s.config.HistoryWindow))
	if err != nil {
		s.logger.Error("Generation failed, completing turn as fallback",
			zap.String("session_id", turn.SessionID),
			zap.Error(err),
		)
		turn.ResponseMode = models.ResponseFallback
		turn.Reply = FallbackMessage
		return
	}

	turn.ResponseMode = models.ResponseGenerative
	turn.Reply = reply
	for _, sn := range snippets {
		turn.Snippets = append(turn.Snippets, sn.Content)
	}

	// Fallback turns are never remembered; completed exchanges are.
	if err := s.retriever.Remember(ctx, userText, reply); err != nil {
		s.logger.Warn("Failed to store conversation memory", zap.Error(err))
	}
}

func (s *ChatService) warmSession(ctx context.Context, session *models.Session) {
	turns, err := s.history.LoadHistory(ctx, session.ID)
	if err != nil {
		s.logger.Warn("Failed to warm session from history",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return
	}
	session.Turns = turns
}

// History returns the persisted turns of one session in completion order.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]models.Turn, error) {
	return s.history.LoadHistory(ctx, sessionID)
}

// Reset clears one session: its persisted history and its live state. The
// knowledge store is untouched.
func (s *ChatService) Reset(ctx context.Context, sessionID string) error {
	if err := s.history.DeleteHistory(ctx, sessionID); err != nil {
		return err
	}
	s.sessions.Delete(sessionID)
	return nil
}

// ClearMemory wipes dynamic conversational memory, keeping the seeded
// knowledge base.
func (s *ChatService) ClearMemory(ctx context.Context) error {
	return s.retriever.Forget(ctx)
}

// Preview resolves the panel a text would route to in the given mode,
// without running a turn. Returns nil when the text routes to generation.
func (s *ChatService) Preview(userText string, mode models.Mode) *models.Panel {
	resolved := s.engine.Resolve(userText, "", mode)
	decision := routing.Decide(resolved, mode, s.catalog)
	if decision.Kind != routing.DecisionShowPanel {
		return nil
	}
	return routing.FilterLocationPanel(decision.Panel, userText)
}

// QuickActions lists the quick actions offered in a mode.
func (s *ChatService) QuickActions(mode models.Mode) []models.QuickAction {
	return s.catalog.QuickActionsForMode(mode)
}
