package client

import (
	"encoding/json"
	"net/url"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/corrcal/pkg/api"
	"github.com/charlie0129/corrcal/pkg/calcium"
	"github.com/charlie0129/corrcal/pkg/config"
)

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	return parseStringResponse(ret)
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

func (c *Client) SetTheme(t config.Theme) (string, error) {
	return c.putJSON("/theme", string(t))
}

func (c *Client) SetDefaultUnit(u calcium.Unit) (string, error) {
	return c.putJSON("/default-unit", u)
}

// Calculate runs a one-shot calculation on the daemon without a session.
func (c *Client) Calculate(req api.CalculateRequest) (*api.State, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	ret, err := c.Post("/calculate", string(payload))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to calculate")
	}
	return decode[api.State](ret)
}

func (c *Client) ListSessions() ([]api.Session, error) {
	ret, err := c.Get("/sessions")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to list sessions")
	}
	var sessions []api.Session
	if err := json.Unmarshal([]byte(ret), &sessions); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal sessions")
	}
	return sessions, nil
}

// CreateSession starts a session. A nil unit uses the daemon's default unit.
func (c *Client) CreateSession(u *calcium.Unit) (*api.Session, error) {
	payload, err := json.Marshal(api.CreateSessionRequest{Unit: u})
	if err != nil {
		return nil, err
	}
	ret, err := c.Post("/sessions", string(payload))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to create session")
	}
	return decode[api.Session](ret)
}

func (c *Client) GetSession(id string) (*api.Session, error) {
	ret, err := c.Get(sessionPath(id, ""))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get session %s", id)
	}
	return decode[api.Session](ret)
}

func (c *Client) DeleteSession(id string) (string, error) {
	ret, err := c.Delete(sessionPath(id, ""))
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to delete session %s", id)
	}
	return parseStringResponse(ret)
}

func (c *Client) SetCalcium(id, text string) (*api.State, error) {
	return c.mutate(id, "/calcium", text)
}

func (c *Client) SetAlbumin(id, text string) (*api.State, error) {
	return c.mutate(id, "/albumin", text)
}

func (c *Client) SetUnit(id string, u calcium.Unit) (*api.State, error) {
	return c.mutate(id, "/unit", u)
}

func (c *Client) Reset(id string) (*api.State, error) {
	ret, err := c.Post(sessionPath(id, "/reset"), "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to reset session %s", id)
	}
	return decode[api.State](ret)
}

// GetClipboardText returns the copy text of the session's result.
func (c *Client) GetClipboardText(id string) (string, error) {
	ret, err := c.Get(sessionPath(id, "/clipboard"))
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get copy text of session %s", id)
	}
	return parseStringResponse(ret)
}

func (c *Client) mutate(id, field string, v any) (*api.State, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	ret, err := c.Put(sessionPath(id, field), string(payload))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to update session %s", id)
	}
	return decode[api.State](ret)
}

func (c *Client) putJSON(path string, v any) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	ret, err := c.Put(path, string(payload))
	if err != nil {
		return "", err
	}
	return parseStringResponse(ret)
}

func sessionPath(id, suffix string) string {
	return "/sessions/" + url.PathEscape(id) + suffix
}

func decode[T any](resp string) (*T, error) {
	var v T
	if err := json.Unmarshal([]byte(resp), &v); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal response")
	}
	return &v, nil
}

// parseStringResponse unquotes a JSON string reply.
func parseStringResponse(resp string) (string, error) {
	var s string
	if err := json.Unmarshal([]byte(resp), &s); err != nil {
		return "", pkgerrors.Wrapf(err, "unexpected response: %s", resp)
	}
	return s, nil
}
