// Package agent runs the narrative game master: an Anthropic model armed
// with the game-mechanics tools, replaying a window of recent conversation
// and a snapshot of the campaign state on every turn.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/emberfall/gamemaster/internal/game/character"
	"github.com/emberfall/gamemaster/internal/game/session"
	"github.com/emberfall/gamemaster/internal/game/state"
	"github.com/emberfall/gamemaster/internal/tool"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5"

const (
	defaultMaxTokens  = 2048
	defaultToolRounds = 8

	// topP is the fixed nucleus-sampling cutoff the narration was tuned
	// with; only temperature is configurable.
	topP = 0.95
)

// Messages is the slice of the Anthropic client the game master needs.
// *anthropic.MessageService satisfies it.
type Messages interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Options tune the model loop. Zero values for Model, MaxTokens, and
// MaxToolRounds fall back to defaults; a zero HistoryWindow replays the
// whole conversation.
type Options struct {
	// Model is the Anthropic model identifier.
	Model string
	// MaxTokens is the per-response token budget.
	MaxTokens int
	// Temperature is the sampling temperature in [0, 1].
	Temperature float64
	// HistoryWindow is how many recent messages are replayed each turn.
	HistoryWindow int
	// MaxToolRounds bounds consecutive tool rounds within one player turn.
	MaxToolRounds int
}

func (o Options) withDefaults() Options {
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	if o.MaxToolRounds <= 0 {
		o.MaxToolRounds = defaultToolRounds
	}
	return o
}

// ToolCall is one dispatched tool invocation from a turn, in dispatch order.
type ToolCall struct {
	Tool   tool.Name
	Input  json.RawMessage
	Result tool.Result
}

// Reply is the game master's answer to one player message.
type Reply struct {
	// Text is the narrative response, tool rounds joined in order.
	Text string
	// ToolCalls traces every tool dispatched while producing Text.
	ToolCalls []ToolCall
}

// GameMaster drives the conversation with the model. Each Send carries the
// standing prompt, a campaign snapshot, and a window of recent exchanges,
// then dispatches whatever tools the model calls until it stops asking.
// Not safe for concurrent use; one game master belongs to one session.
type GameMaster struct {
	client   Messages
	registry *tool.Registry
	camp     *session.Campaign
	opts     Options
	logger   *zap.Logger

	tools   []anthropic.ToolUnionParam
	history []anthropic.MessageParam
}

// New constructs a GameMaster over the client and tool registry.
//
// Precondition: client, registry, camp, and logger must not be nil.
func New(client Messages, registry *tool.Registry, camp *session.Campaign, opts Options, logger *zap.Logger) *GameMaster {
	if client == nil {
		panic("agent.New: client must not be nil")
	}
	if registry == nil {
		panic("agent.New: registry must not be nil")
	}
	if camp == nil {
		panic("agent.New: camp must not be nil")
	}
	if logger == nil {
		panic("agent.New: logger must not be nil")
	}
	return &GameMaster{
		client:   client,
		registry: registry,
		camp:     camp,
		opts:     opts.withDefaults(),
		logger:   logger,
		tools:    toolParams(registry.Specs()),
	}
}

// StartSession begins a fresh campaign around the character sheet. A
// non-empty opening prompt seeds the conversation so the first Send picks
// up the scenario instead of starting cold.
//
// Precondition: sheet must not be nil.
// Postcondition: the campaign state is fresh and the history holds at most
// the opening prompt.
func (g *GameMaster) StartSession(sheet *character.Sheet, openingPrompt string) *state.GameState {
	gs := g.camp.Begin(sheet)
	g.history = nil
	if openingPrompt != "" {
		g.history = []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(openingPrompt)),
		}
	}
	return gs
}

// ResetHistory drops the conversation so the next Send starts clean, as
// after loading a save from outside the model loop.
func (g *GameMaster) ResetHistory() { g.history = nil }

// Send runs one player turn: the message goes to the model with the
// current campaign context, tool calls are dispatched and their results fed
// back, and the final narrative comes out. Tool failures ride back to the
// model inside result bodies; only transport and model errors surface here.
//
// Postcondition: on success the exchange is recorded in the conversation
// window and the campaign session log. A successful load_game call instead
// resets the conversation, since the prior exchanges narrate a campaign
// that no longer exists.
func (g *GameMaster) Send(ctx context.Context, playerMessage string) (Reply, error) {
	system := g.system()
	msgs := g.windowed()
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(playerMessage)))

	var (
		reply  Reply
		parts  []string
		rounds int
		reload bool
	)
	for {
		msg, err := g.client.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(g.opts.Model),
			MaxTokens:   int64(g.opts.MaxTokens),
			Temperature: anthropic.Float(g.opts.Temperature),
			TopP:        anthropic.Float(topP),
			System:      system,
			Messages:    msgs,
			Tools:       g.tools,
		})
		if err != nil {
			return Reply{}, fmt.Errorf("game master turn: %w", err)
		}

		text, uses := splitContent(msg.Content)
		if text != "" {
			parts = append(parts, text)
		}

		if msg.StopReason != anthropic.StopReasonToolUse || len(uses) == 0 {
			break
		}
		if rounds >= g.opts.MaxToolRounds {
			g.logger.Warn("tool round cap reached",
				zap.Int("rounds", rounds),
				zap.Int("pending_calls", len(uses)),
			)
			break
		}
		rounds++

		assistant := make([]anthropic.ContentBlockParamUnion, 0, len(uses)+1)
		if text != "" {
			assistant = append(assistant, anthropic.NewTextBlock(text))
		}
		results := make([]anthropic.ContentBlockParamUnion, 0, len(uses))
		for _, use := range uses {
			assistant = append(assistant, anthropic.ContentBlockParamUnion{
				OfToolUse: &anthropic.ToolUseBlockParam{ID: use.ID, Name: use.Name, Input: use.Input},
			})

			name := tool.Name(use.Name)
			res := g.registry.Dispatch(ctx, name, use.Input)
			reply.ToolCalls = append(reply.ToolCalls, ToolCall{Tool: name, Input: use.Input, Result: res})
			results = append(results, toolResultBlock(use.ID, res))
			if name == tool.LoadGame && res.OK {
				reload = true
			}
		}
		msgs = append(msgs,
			anthropic.NewAssistantMessage(assistant...),
			anthropic.NewUserMessage(results...),
		)
	}

	reply.Text = strings.Join(parts, "\n\n")

	if reload {
		g.history = nil
	} else {
		g.remember(playerMessage, reply.Text)
	}
	g.logTurn(playerMessage, reply.Text)

	g.logger.Debug("game master turn complete",
		zap.Int("tool_rounds", rounds),
		zap.Int("tool_calls", len(reply.ToolCalls)),
	)
	return reply, nil
}

// system assembles the system blocks: the standing prompt plus the campaign
// snapshot when a game is running.
func (g *GameMaster) system() []anthropic.TextBlockParam {
	blocks := []anthropic.TextBlockParam{{Text: systemPrompt}}
	if snapshot := stateContext(g.camp.States().Current()); snapshot != "" {
		blocks = append(blocks, anthropic.TextBlockParam{Text: snapshot})
	}
	return blocks
}

// windowed returns the replayable slice of history.
//
// Invariant: the returned slice never opens on an assistant turn; the API
// requires the first message be the user's.
func (g *GameMaster) windowed() []anthropic.MessageParam {
	h := g.history
	if n := g.opts.HistoryWindow; n > 0 && len(h) > n {
		h = h[len(h)-n:]
	}
	for len(h) > 0 && h[0].Role != anthropic.MessageParamRoleUser {
		h = h[1:]
	}
	out := make([]anthropic.MessageParam, len(h), len(h)+2)
	copy(out, h)
	return out
}

// remember appends the finished exchange to the replayable history. An
// empty narrative leaves only the player side; empty text blocks are not
// replayable.
func (g *GameMaster) remember(playerMessage, text string) {
	g.history = append(g.history, anthropic.NewUserMessage(anthropic.NewTextBlock(playerMessage)))
	if text != "" {
		g.history = append(g.history, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
	}
}

// logTurn records the exchange in the campaign session log, narration
// clipped to 100 runes.
func (g *GameMaster) logTurn(playerMessage, text string) {
	states := g.camp.States()
	if states.Current() == nil {
		return
	}
	_ = states.AddHistory("Player: " + playerMessage)
	_ = states.AddHistory("GM: " + clip(text, 100) + "...")
}

// toolUse is one tool_use block lifted out of a model response.
type toolUse struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// splitContent separates a response into its narrative text and its tool
// calls. Multiple text blocks join with blank lines.
func splitContent(blocks []anthropic.ContentBlockUnion) (string, []toolUse) {
	var (
		parts []string
		uses  []toolUse
	)
	for _, b := range blocks {
		switch b.Type {
		case "text":
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		case "tool_use":
			uses = append(uses, toolUse{ID: b.ID, Name: b.Name, Input: b.Input})
		}
	}
	return strings.Join(parts, "\n\n"), uses
}

// toolParams converts registry specs into the model's tool declarations.
func toolParams(specs []tool.Spec) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, s := range specs {
		props := s.Properties
		if props == nil {
			props = map[string]any{}
		}
		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        string(s.Name),
				Description: anthropic.String(s.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: props,
					Required:   s.Required,
				},
			},
		})
	}
	return params
}

// toolResultBlock wraps a dispatch result for the next model round.
// Failures carry the is_error flag.
func toolResultBlock(toolUseID string, res tool.Result) anthropic.ContentBlockParamUnion {
	return anthropic.ContentBlockParamUnion{
		OfToolResult: &anthropic.ToolResultBlockParam{
			ToolUseID: toolUseID,
			IsError:   anthropic.Bool(!res.OK),
			Content: []anthropic.ToolResultBlockParamContentUnion{
				{OfText: &anthropic.TextBlockParam{Text: string(res.Body)}},
			},
		},
	}
}

// clip truncates s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
