package controllers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const heartbeatEvery = 15 * time.Second

// Events streams new-sale and new-credit notifications as server-sent events.
func (h *Handler) Events(c *fiber.Ctx) error {
	events, cancel := h.Hub.Subscribe(32)
	actor := actorOr(c, "")

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		h.Log.WithField("actor", actor).Debug("event stream opened")

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		ticker := time.NewTicker(heartbeatEvery)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					h.Log.WithFields(logrus.Fields{"type": ev.Type}).WithError(err).Warn("event not encodable")
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				h.Log.WithField("actor", actor).Debug("event stream closed")
				return
			}
		}
	}))
	return nil
}
