package kis2

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Row is one loosely-typed record as returned by the source system's REST
// API. Field access goes through the typed getters, which tolerate missing
// keys and the numeric types JSON decoding produces.
type Row map[string]interface{}

func (r Row) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

func (r Row) Int(key string) (int, bool) {
	switch v := r[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func (r Row) Float(key string) float64 {
	if v, ok := r[key].(float64); ok {
		return v
	}
	return 0
}

func (r Row) Bool(key string) bool {
	v, _ := r[key].(bool)
	return v
}

type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client talks to the KIS2 Django REST API. Authentication is the Django
// session login: fetch the login form for a CSRF token, post credentials,
// keep the session cookie for subsequent /api/ requests.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logrus.Logger

	loggedIn bool
}

func NewClient(cfg Config, log *logrus.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		log: log,
	}
}

var csrfInputRe = regexp.MustCompile(`name="csrfmiddlewaretoken" value="(.+?)"`)

func (c *Client) login() error {
	loginURL := c.cfg.BaseURL + "/accounts/login/"

	resp, err := c.http.Get(loginURL)
	if err != nil {
		return errors.Wrap(err, "fetch login page")
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return errors.Wrap(err, "read login page")
	}

	token := ""
	if m := csrfInputRe.FindSubmatch(body); m != nil {
		token = string(m[1])
	} else {
		for _, ck := range c.http.Jar.Cookies(resp.Request.URL) {
			if ck.Name == "csrftoken" {
				token = ck.Value
			}
		}
	}

	form := url.Values{
		"username":            {c.cfg.Username},
		"password":            {c.cfg.Password},
		"csrfmiddlewaretoken": {token},
	}
	req, err := http.NewRequest(http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "build login request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", loginURL)

	loginResp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "post login form")
	}
	defer loginResp.Body.Close()
	io.Copy(io.Discard, loginResp.Body)

	// Django redirects back to the login page on bad credentials.
	if strings.Contains(loginResp.Request.URL.Path, "/login/") {
		return errors.Errorf("login rejected for user %q", c.cfg.Username)
	}

	c.loggedIn = true
	return nil
}

// FetchRows fetches all records of one source collection, e.g. "Countries"
// or "Box_Accounting". Collection names are an external contract and keep
// the source system's spelling, misspellings included ("OrderComent").
func (c *Client) FetchRows(collection string) ([]Row, error) {
	if !c.loggedIn {
		if err := c.login(); err != nil {
			return nil, err
		}
	}

	apiURL := c.cfg.BaseURL + "/api/" + collection + "/"
	resp, err := c.http.Get(apiURL)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", collection)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch %s: unexpected status %d", collection, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "text/html") {
		// HTML instead of JSON means the session expired or auth failed.
		c.loggedIn = false
		return nil, errors.Errorf("fetch %s: got HTML instead of JSON, session lost", collection)
	}

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, errors.Wrapf(err, "decode %s", collection)
	}
	c.log.WithFields(logrus.Fields{"collection": collection, "rows": len(rows)}).Debug("fetched source collection")
	return rows, nil
}
