package rewards

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/GoPolymarket/xterio-checker/internal/config"
	"github.com/GoPolymarket/xterio-checker/internal/model"
	"github.com/GoPolymarket/xterio-checker/internal/pkg/apperrors"
	"github.com/GoPolymarket/xterio-checker/internal/pkg/metrics"
	"github.com/GoPolymarket/xterio-checker/internal/proxy"
	"github.com/ethereum/go-ethereum/common"
)

const (
	StageLoginChallenge = "login_challenge"
	StageSign           = "sign"
	StageLoginSubmit    = "login_submit"
	StagePointsFetch    = "points_fetch"
)

const (
	challengePath = "/account/v1/login/wallet/"
	loginPath     = "/account/v1/login/wallet"
	pointsPath    = "/account/v1/points/dashboard"

	maxResponseBytes = 1 << 20
)

type State int

const (
	Idle State = iota
	ChallengeRequested
	Signed
	Authenticated
	PointsFetched
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ChallengeRequested:
		return "challenge_requested"
	case Signed:
		return "signed"
	case Authenticated:
		return "authenticated"
	case PointsFetched:
		return "points_fetched"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MessageSigner signs the login challenge on behalf of a wallet.
type MessageSigner interface {
	Address() common.Address
	SignText(message string) (string, error)
}

// Client runs the login and points protocol for one wallet through one proxy.
// It is not safe for concurrent use; the first error is terminal.
type Client struct {
	baseURL string
	api     config.APIConfig
	http    *http.Client

	state   State
	failure *apperrors.AppError
	token   string
}

func NewClient(api config.APIConfig, timeout time.Duration, ep proxy.Endpoint) (*Client, error) {
	transport, err := proxy.NewTransport(ep, timeout)
	if err != nil {
		return nil, err
	}
	// Cookies stay with this wallet's session only.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(api.BaseURL, "/"),
		api:     api,
		http: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   timeout,
		},
		state: Idle,
	}, nil
}

func (c *Client) State() State {
	return c.state
}

// Failure returns the error that moved the client to Failed, if any.
func (c *Client) Failure() *apperrors.AppError {
	return c.failure
}

// Close drops pooled connections held by this client's transport.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Login fetches a challenge, signs it and exchanges the signature for a session token.
func (c *Client) Login(ctx context.Context, s MessageSigner) error {
	if err := c.expect(Idle, StageLoginChallenge); err != nil {
		return err
	}
	address := s.Address().Hex()

	// 1. Challenge
	var challenge envelope[challengeData]
	status, body, err := c.do(ctx, StageLoginChallenge, http.MethodGet, challengePath+address, nil, &challenge)
	if err != nil {
		return c.fail(err)
	}
	if challenge.Data == nil || challenge.Data.Message == nil || *challenge.Data.Message == "" {
		return c.fail(apperrors.NewProtocol(StageLoginChallenge, "challenge message missing", status, body, nil))
	}
	c.advance(ChallengeRequested, StageLoginChallenge)

	// 2. Sign
	signature, err := s.SignText(*challenge.Data.Message)
	if err != nil {
		appErr := apperrors.New(apperrors.ErrUnexpectedFault, "failed to sign challenge", err)
		appErr.Stage = StageSign
		return c.fail(appErr)
	}
	c.state = Signed

	// 3. Submit
	payload := loginRequest{
		Address:    address,
		Type:       "eth",
		Sign:       signature,
		Provider:   "METAMASK",
		InviteCode: "",
	}
	var login envelope[loginData]
	status, body, err = c.do(ctx, StageLoginSubmit, http.MethodPost, loginPath, payload, &login)
	if err != nil {
		return c.fail(err)
	}
	if login.Data == nil || login.Data.IDToken == nil || *login.Data.IDToken == "" {
		return c.fail(apperrors.NewProtocol(StageLoginSubmit, "id_token missing", status, body, nil))
	}
	c.token = *login.Data.IDToken
	c.advance(Authenticated, StageLoginSubmit)
	return nil
}

// Points reads the dashboard with the session token and sums base and bonus points
// of the first total_points entry.
func (c *Client) Points(ctx context.Context) (model.PointsTally, error) {
	if err := c.expect(Authenticated, StagePointsFetch); err != nil {
		return model.PointsTally{}, err
	}

	var dashboard envelope[pointsData]
	status, body, err := c.do(ctx, StagePointsFetch, http.MethodGet, pointsPath, nil, &dashboard)
	if err != nil {
		return model.PointsTally{}, c.fail(err)
	}
	if dashboard.Data == nil || len(dashboard.Data.TotalPoints) == 0 {
		return model.PointsTally{}, c.fail(apperrors.NewProtocol(StagePointsFetch, "total_points missing", status, body, nil))
	}

	tally, err := dashboard.Data.TotalPoints[0].tally()
	if err != nil {
		return model.PointsTally{}, c.fail(apperrors.NewProtocol(StagePointsFetch, err.Error(), status, body, nil))
	}
	c.advance(PointsFetched, StagePointsFetch)
	return tally, nil
}

func (c *Client) do(ctx context.Context, stage, method, path string, in, out any) (int, []byte, error) {
	var reqBody io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, nil, apperrors.NewProtocol(stage, "failed to encode request", 0, nil, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, apperrors.NewProtocol(stage, "failed to build request", 0, nil, err)
	}
	c.setHeaders(req)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("authorization", c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.StageLatency.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, nil, apperrors.NewProtocol(stage, "request failed", 0, nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, apperrors.NewProtocol(stage, "failed to read response", resp.StatusCode, nil, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, body, apperrors.NewProtocol(stage, "unexpected status", resp.StatusCode, body, nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, body, apperrors.NewProtocol(stage, "malformed response", resp.StatusCode, body, err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	set := func(k, v string) {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	set("User-Agent", c.api.UserAgent)
	set("Accept", c.api.Accept)
	set("Accept-Language", c.api.AcceptLanguage)
	set("Referer", c.api.Referer)
	set("Origin", c.api.Origin)
}

func (c *Client) expect(want State, stage string) error {
	if c.state == want {
		return nil
	}
	if c.failure != nil {
		return c.failure
	}
	appErr := apperrors.New(apperrors.ErrUnexpectedFault,
		fmt.Sprintf("client is %s, want %s", c.state, want), nil)
	appErr.Stage = stage
	return appErr
}

func (c *Client) advance(next State, stage string) {
	c.state = next
	metrics.StageResults.WithLabelValues(stage, "ok").Inc()
}

func (c *Client) fail(err error) error {
	appErr := apperrors.Wrap(err)
	c.state = Failed
	c.failure = appErr
	c.token = ""
	metrics.StageResults.WithLabelValues(appErr.Stage, "error").Inc()
	return appErr
}
