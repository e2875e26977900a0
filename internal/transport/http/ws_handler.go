package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/config"
	"github.com/vovakirdan/roomrelay/internal/core"
	"github.com/vovakirdan/roomrelay/internal/metrics"
)

// errStreamClosed means the hub closed the client's event channel.
var errStreamClosed = errors.New("event stream closed")

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub     *core.Hub
	cfg     *config.Config
	log     *zerolog.Logger
	metrics *metrics.Metrics
	origins []string
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger, m *metrics.Metrics) stdhttp.Handler {
	return &WSHandler{
		hub:     hub,
		cfg:     cfg,
		log:     logger,
		metrics: m,
		origins: originPatterns(cfg.AllowedOrigins),
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	conn.SetReadLimit(h.cfg.MaxMessageBytes)

	client := core.NewClient(h.cfg.ClientBuffer)
	if err := h.hub.RegisterClient(ctx, client); err != nil {
		h.log.Warn().Err(err).Msg("register client")
		conn.Close(websocket.StatusTryAgainLater, "server unavailable")
		return
	}
	defer h.hub.UnregisterClient(client)

	logger := h.log.With().Str("session_id", string(client.ID)).Logger()
	logger.Debug().Str("remote", r.RemoteAddr).Msg("client connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, &logger)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client, &logger)
	}()

	err = <-errCh
	if errors.Is(err, errStreamClosed) {
		// Send the close frame while the read loop can still take the reply.
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		cancel()
		<-errCh
		logger.Debug().Msg("client disconnected by shutdown")
		return
	}
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = "connection error"
			logger.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	logger.Debug().Int("status", int(status)).Msg("client disconnected")
	conn.Close(status, reason)
}

// readLoop decodes frames and submits commands. Frames that fail to decode are
// dropped without closing the connection.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, logger *zerolog.Logger) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			h.metrics.FrameRejected("binary")
			logger.Debug().Msg("binary frame dropped")
			continue
		}

		cmd, err := inboundToCommand(data)
		if err != nil {
			h.metrics.FrameRejected(rejectReason(err))
			logger.Debug().Err(err).Msg("inbound frame dropped")
			continue
		}
		if err := h.hub.Submit(ctx, client, cmd); err != nil {
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, logger *zerolog.Logger) error {
	var ping <-chan time.Time
	if h.cfg.PingInterval > 0 {
		ticker := time.NewTicker(h.cfg.PingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return errStreamClosed
			}
			if err := h.write(ctx, conn, event); err != nil {
				logger.Error().Err(err).Str("event", event.Kind.String()).Msg("write ws event")
				return err
			}
		case <-ping:
			pingCtx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Debug().Err(err).Msg("ping failed")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, event *core.Event) error {
	writeCtx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, outboundFromEvent(event))
}
