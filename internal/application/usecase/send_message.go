package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/domain/entity"
	"github.com/colmeia/hive/internal/domain/repository"
	"github.com/colmeia/hive/internal/domain/service"
	"github.com/colmeia/hive/pkg/errors"
)

const (
	// memoryWindow is how many trailing messages feed each agent's
	// context when memory is enabled.
	memoryWindow = 10

	// userLabel renders the user in agent context, regardless of locale.
	userLabel = "User"

	userNotifyPrefix = "💬 Nova mensagem: "
)

// SendMessageUseCase is the message-orchestration flow: one user
// message fans out to every agent attached to the conversation, each
// invoked sequentially with its own memory context, with every append
// mirrored to the relay.
type SendMessageUseCase struct {
	agents        repository.AgentRepository
	conversations repository.ConversationRepository
	model         service.ModelClient
	notifier      service.Notifier
	broadcaster   service.Broadcaster
	memoryEnabled func() bool
	persist       func()
	logger        *zap.Logger
}

// NewSendMessageUseCase creates the orchestrator. broadcaster and
// persist may be nil. memoryEnabled is read once per agent call so the
// toggle applies mid-flight.
func NewSendMessageUseCase(
	agents repository.AgentRepository,
	conversations repository.ConversationRepository,
	model service.ModelClient,
	notifier service.Notifier,
	broadcaster service.Broadcaster,
	memoryEnabled func() bool,
	persist func(),
	logger *zap.Logger,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		agents:        agents,
		conversations: conversations,
		model:         model,
		notifier:      notifier,
		broadcaster:   broadcaster,
		memoryEnabled: memoryEnabled,
		persist:       persist,
		logger:        logger,
	}
}

// SendResult reports what one send operation appended.
type SendResult struct {
	UserMessage entity.Message
	Replies     []entity.Message
	Skipped     int
	// Notices are non-blocking warnings (relay failures) surfaced to
	// the user without failing the send.
	Notices []string
	State   service.SendState
}

// Execute runs one send operation. Empty (post-trim) text or a missing
// conversation is a silent no-op returning (nil, nil). A model failure
// for any agent aborts the remaining agents but keeps every message
// already appended; partial results stay visible, nothing rolls back.
func (uc *SendMessageUseCase) Execute(ctx context.Context, conversationID, text string, files []service.File) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" || conversationID == "" {
		return nil, nil
	}

	conv, err := uc.conversations.FindByID(ctx, conversationID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	sm := service.NewSendStateMachine(uc.logger)
	result := &SendResult{}

	fileNames := make([]string, 0, len(files))
	for _, f := range files {
		fileNames = append(fileNames, f.Name)
	}

	userMsg := entity.NewUserMessage(text, fileNames)
	conv.Append(userMsg)
	if err := uc.conversations.Save(ctx, conv); err != nil {
		return nil, err
	}
	_ = sm.Transition(service.SendStateUserAppended)
	result.UserMessage = userMsg
	uc.broadcast(conv.ID, userMsg)

	uc.logger.Info("User message appended",
		zap.String("conversation_id", conv.ID),
		zap.String("message_id", userMsg.ID),
		zap.Int("attachments", len(files)),
	)

	// Best-effort mirror of the user message; a relay failure never
	// aborts the send.
	if uc.notifier.Enabled() {
		if err := uc.notifier.NotifyText(ctx, userNotifyPrefix+text); err != nil {
			uc.relayWarn(result, err)
		}
		if len(files) > 0 {
			if err := uc.notifier.NotifyFiles(ctx, files); err != nil {
				uc.relayWarn(result, err)
			}
		}
	}

	if len(conv.AgentIDs) == 0 {
		_ = sm.Transition(service.SendStateDone)
		result.State = sm.State()
		uc.persistState()
		return result, nil
	}

	_ = sm.Transition(service.SendStateProcessing)

	names := uc.agentNames(ctx)

	// Agents run strictly in attachment order, one at a time.
	for _, agentID := range conv.AgentIDs {
		agent, err := uc.agents.FindByID(ctx, agentID)
		if err != nil {
			// Attached agent deleted since attachment, skip silently.
			sm.RecordSkip()
			result.Skipped++
			uc.logger.Debug("Skipping unresolvable agent", zap.String("agent_id", agentID))
			continue
		}

		contextText := ""
		if uc.memoryEnabled() {
			contextText = renderContext(conv.Recent(memoryWindow), names)
		}

		response, err := uc.model.Complete(ctx, text, contextText, agent.SystemInstruction)
		if err != nil {
			uc.logger.Error("Agent completion failed, aborting batch",
				zap.String("agent_id", agent.ID),
				zap.String("agent_name", agent.Name),
				zap.Error(err),
			)
			_ = sm.Transition(service.SendStateFailed)
			result.State = sm.State()
			uc.persistState()
			return result, err
		}

		reply := entity.NewAgentReply(agent.ID, response)
		conv.Append(reply)
		if err := uc.conversations.Save(ctx, conv); err != nil {
			_ = sm.Transition(service.SendStateFailed)
			result.State = sm.State()
			return result, err
		}
		sm.RecordAgent(agent.ID)
		result.Replies = append(result.Replies, reply)
		uc.broadcast(conv.ID, reply)

		if uc.notifier.Enabled() {
			if err := uc.notifier.NotifyText(ctx, agent.Name+": "+response); err != nil {
				uc.relayWarn(result, err)
			}
		}
	}

	_ = sm.Transition(service.SendStateDone)
	result.State = sm.State()
	uc.persistState()

	uc.logger.Info("Send complete",
		zap.String("conversation_id", conv.ID),
		zap.Int("replies", len(result.Replies)),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (uc *SendMessageUseCase) broadcast(conversationID string, msg entity.Message) {
	if uc.broadcaster != nil {
		uc.broadcaster.MessageAppended(conversationID, msg)
	}
}

func (uc *SendMessageUseCase) persistState() {
	if uc.persist != nil {
		uc.persist()
	}
}

func (uc *SendMessageUseCase) relayWarn(result *SendResult, err error) {
	uc.logger.Warn("Relay notification failed", zap.Error(err))
	result.Notices = append(result.Notices, "relay: "+err.Error())
}

// agentNames builds the display-name lookup used when rendering memory
// context.
func (uc *SendMessageUseCase) agentNames(ctx context.Context) map[string]string {
	names := make(map[string]string)
	agents, err := uc.agents.FindAll(ctx)
	if err != nil {
		return names
	}
	for _, a := range agents {
		names[a.ID] = a.Name
	}
	return names
}

// renderContext renders messages as "<displayName>: <content>" lines in
// original order. The user renders under a fixed label; a sender whose
// agent no longer exists falls back to its raw id.
func renderContext(messages []entity.Message, names map[string]string) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		label := userLabel
		if !m.IsFromUser() {
			label = names[m.AgentID]
			if label == "" {
				label = m.AgentID
			}
		}
		lines = append(lines, label+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}
