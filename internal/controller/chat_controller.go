package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"beaglemind-be/internal/dto"
	"beaglemind-be/internal/pkg/logger"
	"beaglemind-be/internal/pkg/serverutils"
	"beaglemind-be/internal/service"
	internalWS "beaglemind-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Stream event names shared by SSE and WebSocket frames.
const (
	EventMeta  = "meta"
	EventDelta = "delta"
	EventError = "error"
	EventDone  = "done"
)

var errClientGone = errors.New("client disconnected")

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	ChatSocket(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	hub         *internalWS.Hub
	maxDuration time.Duration
	jwtSecret   string
	log         logger.ILogger
}

func NewChatController(chatService service.IChatService, hub *internalWS.Hub, maxDuration time.Duration, jwtSecret string, log logger.ILogger) IChatController {
	if maxDuration <= 0 {
		maxDuration = 30 * time.Second
	}
	return &chatController{
		chatService: chatService,
		hub:         hub,
		maxDuration: maxDuration,
		jwtSecret:   jwtSecret,
		log:         log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
	r.Get("/chat/ws", serverutils.OptionalJwtMiddleware(c.jwtSecret), c.ChatSocket)
}

// sink delivers one named event; false means the client is gone.
type sink func(event string, data interface{}) bool

type pulled struct {
	frag string
	err  error
	ok   bool
}

// Chat streams the answer as server-sent events. A failure before the first fragment is
// returned as a plain JSON error instead of a stream.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), c.maxDuration)
	turn, err := c.chatService.Start(reqCtx, &req)
	if err != nil {
		cancel()
		return err
	}

	next, stop := iter.Pull2(turn.Stream)
	frag, err, ok := next()
	if err != nil {
		stop()
		cancel()
		c.chatService.Finish(context.Background(), turn, "sse", "", err)
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer stop()

		send := func(event string, data interface{}) bool {
			return writeSSE(w, event, data)
		}

		var (
			output    string
			streamErr = errClientGone
		)
		if send(EventMeta, turn.Meta) {
			output, streamErr = pump(pulled{frag, err, ok}, next, send)
		}
		c.chatService.Finish(context.Background(), turn, "sse", output, streamErr)
	})
	return nil
}

// ChatSocket upgrades to a WebSocket where every text message is a chat request.
func (c *chatController) ChatSocket(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	userID, _ := serverutils.Identity(ctx)
	return websocket.New(func(conn *websocket.Conn) {
		internalWS.ServeWs(context.Background(), c.hub, conn, userID, c.serveSocketMessage)
	})(ctx)
}

func (c *chatController) serveSocketMessage(ctx context.Context, message []byte, emit func(frame interface{}) bool) {
	send := func(event string, data interface{}) bool {
		return emit(dto.ChatFrame{Type: event, Data: data})
	}

	var req dto.ChatRequest
	if err := json.Unmarshal(message, &req); err != nil {
		send(EventError, streamError(err))
		return
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		send(EventError, streamError(err))
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.maxDuration)
	defer cancel()

	turn, err := c.chatService.Start(reqCtx, &req)
	if err != nil {
		send(EventError, streamError(err))
		return
	}

	next, stop := iter.Pull2(turn.Stream)
	defer stop()

	var (
		output    string
		streamErr = errClientGone
	)
	if send(EventMeta, turn.Meta) {
		frag, err, ok := next()
		output, streamErr = pump(pulled{frag, err, ok}, next, send)
	}
	c.chatService.Finish(context.Background(), turn, "ws", output, streamErr)
}

// pump forwards head and the rest of the stream as delta events, then an error or done
// event. It returns the text sent and the error that ended the stream.
func pump(head pulled, next func() (string, error, bool), send sink) (string, error) {
	var out strings.Builder
	for cur := head; cur.ok; cur.frag, cur.err, cur.ok = next() {
		if cur.err != nil {
			send(EventError, streamError(cur.err))
			return out.String(), cur.err
		}
		if cur.frag == "" {
			continue
		}
		out.WriteString(cur.frag)
		if !send(EventDelta, dto.ChatDelta{Content: cur.frag}) {
			return out.String(), errClientGone
		}
	}

	if !send(EventDone, dto.ChatDone{FinishReason: "stop"}) {
		return out.String(), errClientGone
	}
	return out.String(), nil
}

func streamError(err error) dto.ChatStreamError {
	code, message, data := serverutils.Classify(err)
	return dto.ChatStreamError{Code: code, Message: message, Data: data}
}

func writeSSE(w *bufio.Writer, event string, data interface{}) bool {
	payload, err := json.Marshal(data)
	if err != nil {
		return false
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return false
	}
	return w.Flush() == nil
}
