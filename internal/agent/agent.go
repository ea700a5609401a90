package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/comigor/tailortalk/internal/journal"
	"github.com/comigor/tailortalk/internal/llm"
	"github.com/comigor/tailortalk/internal/logger"
	"github.com/comigor/tailortalk/internal/metrics"
	"github.com/comigor/tailortalk/pkg/tools"

	"github.com/qmuntal/stateless" // FSM library
)

// FSM States
type State string

const (
	StatePrimed        State = "Primed"
	StateAwaitingModel State = "AwaitingModel"
	StateScanning      State = "Scanning"
	StateExecuting     State = "Executing"
	StateDone          State = "Done"      // Terminal: final reply available
	StateTruncated     State = "Truncated" // Terminal: round or time limit hit
	StateFailed        State = "Failed"    // Terminal: model or tool error
)

// FSM Triggers
type Trigger string

const (
	TriggerUserMessage   Trigger = "UserMessage"
	TriggerReplyReceived Trigger = "ReplyReceived"
	TriggerModelFailed   Trigger = "ModelFailed"
	TriggerLimitReached  Trigger = "LimitReached"
	TriggerNoToolCall    Trigger = "NoToolCall"
	TriggerToolCallFound Trigger = "ToolCallFound"
	TriggerUnknownTool   Trigger = "UnknownTool"
	TriggerToolCompleted Trigger = "ToolCompleted"
	TriggerToolFailed    Trigger = "ToolFailed"
)

const (
	DefaultMaxRounds  = 10
	DefaultTimeBudget = 2 * time.Minute
)

// TruncationNotice is appended to the last reply when the loop is cut short.
const TruncationNotice = "⚠️ I had to stop before finishing this request. Please check your calendar and try again."

// ErrLoopLimitExceeded is returned together with a truncated reply.
var ErrLoopLimitExceeded = errors.New("conversation loop limit exceeded")

// Journal records executed tool calls.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Role of a transcript turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is one transcript entry.
type Turn struct {
	Role    Role
	Content string
}

// Options tune a Conversation. Zero values fall back to defaults.
type Options struct {
	SessionID  string
	MaxRounds  int
	TimeBudget time.Duration
	TimeZone   string
	Journal    Journal
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// Conversation is one model chat session driving the calendar tools.
type Conversation struct {
	mu         sync.Mutex
	session    llm.Session
	registry   *tools.Registry
	opts       Options
	log        *slog.Logger
	transcript []Turn
}

// New primes session with the tool instructions. The model's answer to the
// primer is discarded.
func New(ctx context.Context, session llm.Session, registry *tools.Registry, opts Options) (*Conversation, error) {
	if session == nil {
		return nil, errors.New("model session cannot be nil")
	}
	if registry == nil {
		return nil, errors.New("tool registry cannot be nil")
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.TimeBudget <= 0 {
		opts.TimeBudget = DefaultTimeBudget
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Conversation{
		session:  session,
		registry: registry,
		opts:     opts,
		log:      logger.WithSession(opts.SessionID),
	}

	primer := Primer(registry, opts.TimeZone, opts.Now().Year())
	start := opts.Now()
	if _, err := session.Send(ctx, primer); err != nil {
		opts.Metrics.ModelRequest("error", opts.Now().Sub(start))
		return nil, fmt.Errorf("prime conversation: %w", err)
	}
	opts.Metrics.ModelRequest("ok", opts.Now().Sub(start))
	c.transcript = append(c.transcript, Turn{Role: RoleSystem, Content: primer})
	c.log.Debug("conversation primed")
	return c, nil
}

// Transcript returns a copy of every turn so far.
func (c *Conversation) Transcript() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn(nil), c.transcript...)
}

// Process answers message, running at most one tool per model reply until
// the model stops asking for tools. Calls on the same Conversation are
// serialized.
func (c *Conversation) Process(ctx context.Context, message string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// FSM context data
	type fsmContext struct {
		pending  string
		reply    string
		call     tools.Invocation
		lastErr  error
		rounds   int
		deadline time.Time
	}
	fsmCtx := &fsmContext{deadline: c.opts.Now().Add(c.opts.TimeBudget)}

	fsm := stateless.NewStateMachine(StatePrimed)

	fsm.Configure(StatePrimed).
		Permit(TriggerUserMessage, StateAwaitingModel)

	fsm.Configure(StateAwaitingModel).
		OnEntry(func(_ context.Context, _ ...any) error {
			c.log.Debug("FSM: Entering AwaitingModel", "round", fsmCtx.rounds+1)
			return nil
		}).
		Permit(TriggerReplyReceived, StateScanning).
		Permit(TriggerModelFailed, StateFailed).
		Permit(TriggerLimitReached, StateTruncated)

	fsm.Configure(StateScanning).
		PermitReentry(TriggerUnknownTool).
		Permit(TriggerNoToolCall, StateDone).
		Permit(TriggerToolCallFound, StateExecuting)

	fsm.Configure(StateExecuting).
		OnEntry(func(_ context.Context, _ ...any) error {
			c.log.Debug("tool detected", "call", fsmCtx.call.String())
			return nil
		}).
		Permit(TriggerToolCompleted, StateAwaitingModel).
		Permit(TriggerToolFailed, StateFailed)

	fsm.Configure(StateDone).
		OnEntry(func(_ context.Context, _ ...any) error {
			c.opts.Metrics.LoopFinished(fsmCtx.rounds, false)
			return nil
		})

	fsm.Configure(StateTruncated).
		OnEntry(func(_ context.Context, _ ...any) error {
			c.log.Warn("conversation loop limit reached", "rounds", fsmCtx.rounds, "max_rounds", c.opts.MaxRounds)
			c.opts.Metrics.LoopFinished(fsmCtx.rounds, true)
			return nil
		})

	fsm.Configure(StateFailed).
		OnEntry(func(_ context.Context, _ ...any) error {
			c.log.Error("conversation failed", "error", fsmCtx.lastErr)
			return nil
		})

	for {
		var trigger Trigger
		switch fsm.MustState().(State) {
		case StatePrimed:
			fsmCtx.pending = "User: " + message
			c.transcript = append(c.transcript, Turn{Role: RoleUser, Content: message})
			trigger = TriggerUserMessage

		case StateAwaitingModel:
			if fsmCtx.rounds >= c.opts.MaxRounds || c.opts.Now().After(fsmCtx.deadline) {
				trigger = TriggerLimitReached
				break
			}
			fsmCtx.rounds++
			reply, err := c.send(ctx, fsmCtx.pending)
			if err != nil {
				fsmCtx.lastErr = err
				trigger = TriggerModelFailed
				break
			}
			fsmCtx.reply = reply
			c.transcript = append(c.transcript, Turn{Role: RoleAssistant, Content: reply})
			trigger = TriggerReplyReceived

		case StateScanning:
			// Later calls in the same reply are left for the model to repeat.
			call, ok := tools.Next(tools.Parse(fsmCtx.reply))
			if !ok {
				trigger = TriggerNoToolCall
				break
			}
			fsmCtx.call = call
			if _, ok := c.registry.Lookup(fsmCtx.call.Tool); !ok {
				fsmCtx.reply = fmt.Sprintf("❌ Unknown tool: %s", fsmCtx.call.Tool)
				c.log.Warn("unknown tool requested", "tool", fsmCtx.call.Tool)
				c.record(ctx, fsmCtx.call, fsmCtx.reply, journal.OutcomeUnknown)
				c.transcript = append(c.transcript, Turn{Role: RoleTool, Content: fsmCtx.reply})
				trigger = TriggerUnknownTool
				break
			}
			trigger = TriggerToolCallFound

		case StateExecuting:
			tool, _ := c.registry.Lookup(fsmCtx.call.Tool)
			output, err := tool.Run(ctx, fsmCtx.call.Args)
			if err != nil {
				c.record(ctx, fsmCtx.call, err.Error(), journal.OutcomeError)
				fsmCtx.lastErr = fmt.Errorf("tool %s: %w", fsmCtx.call.Tool, err)
				trigger = TriggerToolFailed
				break
			}
			c.log.Debug("tool output", "tool", fsmCtx.call.Tool, "output", output)
			c.record(ctx, fsmCtx.call, output, journal.OutcomeOK)
			c.transcript = append(c.transcript, Turn{Role: RoleTool, Content: output})
			fsmCtx.pending = fmt.Sprintf("Here’s what I found: %s. What should I do next?", output)
			trigger = TriggerToolCompleted

		case StateDone:
			return fsmCtx.reply, nil

		case StateTruncated:
			reply := TruncationNotice
			if fsmCtx.reply != "" {
				reply = fsmCtx.reply + "\n\n" + TruncationNotice
			}
			return reply, ErrLoopLimitExceeded

		case StateFailed:
			return "", fsmCtx.lastErr
		}

		if err := fsm.FireCtx(ctx, trigger); err != nil {
			return "", fmt.Errorf("conversation state machine: %w", err)
		}
	}
}

func (c *Conversation) send(ctx context.Context, msg string) (string, error) {
	start := c.opts.Now()
	reply, err := c.session.Send(ctx, msg)
	took := c.opts.Now().Sub(start)
	if err != nil {
		c.opts.Metrics.ModelRequest("error", took)
		return "", fmt.Errorf("model request: %w", err)
	}
	c.opts.Metrics.ModelRequest("ok", took)
	c.log.Debug("model reply received", "reply", reply, "took", took)
	return reply, nil
}

func (c *Conversation) record(ctx context.Context, call tools.Invocation, output string, outcome journal.Outcome) {
	c.opts.Metrics.ToolInvoked(string(call.Tool), string(outcome))
	if c.opts.Journal == nil {
		return
	}
	err := c.opts.Journal.Record(ctx, journal.Entry{
		SessionID: c.opts.SessionID,
		Tool:      string(call.Tool),
		Args:      call.Args,
		Output:    output,
		Outcome:   outcome,
	})
	if err != nil {
		c.log.Warn("failed to journal tool call", "tool", call.Tool, "error", err)
	}
}
