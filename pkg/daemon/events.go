package daemon

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// streamEvents forwards hub events to the client as server-sent events until
// the client goes away or the daemon shuts down.
func streamEvents(c *gin.Context) {
	done := streamsDone
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	logrus.WithField("subscribers", hub.Subscribers()).Debug("event stream opened")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		case <-done:
			return false
		}
	})

	logrus.Debug("event stream closed")
}
