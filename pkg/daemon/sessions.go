package daemon

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/corrcal/pkg/api"
	"github.com/charlie0129/corrcal/pkg/calcium"
	"github.com/charlie0129/corrcal/pkg/events"
	"github.com/charlie0129/corrcal/pkg/session"
)

func toAPISession(sum session.Summary) api.Session {
	return api.Session{
		ID:        sum.ID,
		CreatedAt: sum.CreatedAt,
		UpdatedAt: sum.UpdatedAt,
		State:     api.NewState(sum.State),
	}
}

func listSessions(c *gin.Context) {
	list := store.List()
	ret := make([]api.Session, 0, len(list))
	for _, s := range list {
		ret = append(ret, toAPISession(s.Summary()))
	}
	c.IndentedJSON(http.StatusOK, ret)
}

func createSession(c *gin.Context) {
	var req api.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.BindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, err)
			return
		}
	}

	u := conf.DefaultUnit()
	if req.Unit != nil {
		u = *req.Unit
	}

	sess := store.Create(u)
	logrus.WithFields(logrus.Fields{
		"session": sess.ID,
		"unit":    u.String(),
	}).Info("session created")

	c.IndentedJSON(http.StatusCreated, toAPISession(sess.Summary()))
}

// lookupSession aborts with 404 when the session does not exist.
func lookupSession(c *gin.Context) (*session.Session, bool) {
	id := c.Param("id")
	sess, ok := store.Get(id)
	if !ok {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("session %s not found", id))
		return nil, false
	}
	return sess, true
}

func getSession(c *gin.Context) {
	sess, ok := lookupSession(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, toAPISession(sess.Summary()))
}

func deleteSession(c *gin.Context) {
	id := c.Param("id")
	if !store.Delete(id) {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("session %s not found", id))
		return
	}

	logrus.WithField("session", id).Info("session deleted")

	c.IndentedJSON(http.StatusOK, fmt.Sprintf("session %s deleted", id))
}

// mutateSession applies fn to the session's engine, publishes the outcome and
// replies with the new state.
func mutateSession(c *gin.Context, reset bool, fn func(e *calcium.Engine)) {
	id := c.Param("id")

	var before calcium.State
	after, ok := store.Update(id, func(e *calcium.Engine) {
		before = e.State()
		fn(e)
	})
	if !ok {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("session %s not found", id))
		return
	}

	publishTransitions(id, reset, before, after)

	c.IndentedJSON(http.StatusOK, api.NewState(after))
}

func setSessionCalcium(c *gin.Context) {
	var text string
	if err := c.BindJSON(&text); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	mutateSession(c, false, func(e *calcium.Engine) { e.SetCalciumInput(text) })
}

func setSessionAlbumin(c *gin.Context) {
	var text string
	if err := c.BindJSON(&text); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	mutateSession(c, false, func(e *calcium.Engine) { e.SetAlbuminInput(text) })
}

func setSessionUnit(c *gin.Context) {
	var u calcium.Unit
	if err := c.BindJSON(&u); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	mutateSession(c, false, func(e *calcium.Engine) { e.SetUnit(u) })
}

func resetSession(c *gin.Context) {
	mutateSession(c, true, func(e *calcium.Engine) { e.Reset() })
}

func getSessionClipboard(c *gin.Context) {
	sess, ok := lookupSession(c)
	if !ok {
		return
	}

	st := sess.State()
	if st.Result == nil {
		abortWithError(c, http.StatusConflict, errNoResult)
		return
	}

	c.IndentedJSON(http.StatusOK, st.Result.ClipboardText())
}

// publishTransitions turns a state change into events: the new state, and
// toasts for what a user would want to be told about.
func publishTransitions(id string, reset bool, before, after calcium.State) {
	hub.Publish(events.SessionUpdated, events.SessionUpdatedEvent{
		SessionID: id,
		State:     after,
		Ts:        time.Now().Unix(),
	})

	if reset {
		hub.Notify(events.LevelInfo, id, "Form has been reset")
		return
	}

	for _, v := range []struct{ before, after calcium.Validation }{
		{before.CalciumValidation, after.CalciumValidation},
		{before.AlbuminValidation, after.AlbuminValidation},
	} {
		if v.after.HasWarning() && v.after != v.before {
			hub.Notify(events.LevelWarning, id, v.after.Message)
		}
	}

	if before.Result == nil && after.Result != nil {
		hub.Notify(events.LevelSuccess, id, "Calculation complete!")
	}
}
