package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/gorilla/websocket"
	"github.com/openlyric/bridge/coordinator"
	"github.com/openlyric/bridge/exporter"
	"github.com/shimmeringbee/logwrap"
	"net/http"
	"time"
)

type eventsController struct {
	eventbus    coordinator.EventSubscriber
	eventMapper eventMapper
	logger      logwrap.Logger
}

const ConnectionEventBufferSize = 16
const ConnectionHeartbeatInterval = 30 * time.Second

func (z *eventsController) serveServerSideEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Type")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	doneCh := r.Context().Done()
	eventsCh := make(chan any, ConnectionEventBufferSize)

	z.eventbus.Subscribe(eventsCh)
	defer z.eventbus.Unsubscribe(eventsCh)

	flusher := w.(http.Flusher)

	z.sendLoop(func(b []byte) error {
		data := append([]byte("data: "), b...)
		data = append(data, '\n', '\n')

		if n, err := w.Write(data); err != nil {
			return err
		} else if len(data) != n {
			return fmt.Errorf("failed to send full event: %d != %d", len(data), n)
		}

		flusher.Flush()
		return nil
	}, eventsCh, doneCh)
}

var wsUpgrader = websocket.Upgrader{}

func (z *eventsController) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	c, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer c.Close()

	if err := z.serveWebsocketConnection(c); err != nil {
		z.logger.LogDebug(r.Context(), "Websocket connection ended with error.", logwrap.Err(err))
	}
}

func (z *eventsController) serveWebsocketConnection(c *websocket.Conn) error {
	eventsCh := make(chan any, ConnectionEventBufferSize)
	shutdownCh := make(chan struct{}, 1)

	z.eventbus.Subscribe(eventsCh)

	defer func() {
		z.eventbus.Unsubscribe(eventsCh)

		shutdownCh <- struct{}{}
		close(shutdownCh)
	}()

	go z.sendLoop(func(b []byte) error {
		return c.WriteMessage(websocket.TextMessage, b)
	}, eventsCh, shutdownCh)

	return z.serviceIncoming(c)
}

func (z *eventsController) sendLoop(publish func([]byte) error, ch chan any, shutCh <-chan struct{}) {
	initCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	initialEvents, err := z.eventMapper.InitialEvents(initCtx)
	cancel()
	if err != nil {
		z.logger.LogError(context.Background(), "Failed to generate initial events for connection.", logwrap.Err(err))
		return
	}

	for _, d := range initialEvents {
		if err := publish(d); err != nil {
			z.logger.LogError(context.Background(), "Failed to send initial event to connection.", logwrap.Err(err))
			return
		}
	}

	heartbeat := time.NewTicker(ConnectionHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-heartbeat.C:
			d, err := json.Marshal(exporter.HeartBeatMessage{Message: exporter.Message{Type: exporter.HeartBeatMessageName}})
			if err != nil {
				continue
			}

			if err := publish(d); err != nil {
				z.logger.LogDebug(context.Background(), "Failed to send heartbeat to connection.", logwrap.Err(err))
				return
			}
		case event := <-ch:
			if event == nil {
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			ds, err := z.eventMapper.MapEvent(ctx, event)
			cancel()

			if err != nil {
				z.logger.LogError(ctx, "Failed to map event to wire message.", logwrap.Err(err), logwrap.Datum("event", event))
				continue
			}

			for _, d := range ds {
				if err := publish(d); err != nil {
					z.logger.LogError(ctx, "Failed to send event to connection.", logwrap.Err(err))
					return
				}
			}
		case <-shutCh:
			return
		}
	}
}

func (z *eventsController) serviceIncoming(c *websocket.Conn) error {
	for {
		_, _, err := c.ReadMessage()
		if err != nil {
			if _, ok := err.(*websocket.CloseError); ok {
				z.logger.LogDebug(context.Background(), "Websocket closed.", logwrap.Err(err))
				return nil
			}
			z.logger.LogError(context.Background(), "Failed to read message from websocket.", logwrap.Err(err))
			return err
		}
	}
}
