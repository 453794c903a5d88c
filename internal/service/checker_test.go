package service

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GoPolymarket/xterio-checker/internal/config"
	"github.com/GoPolymarket/xterio-checker/internal/model"
	"github.com/GoPolymarket/xterio-checker/internal/pkg/apperrors"
	"github.com/GoPolymarket/xterio-checker/internal/pkg/logger"
	"github.com/GoPolymarket/xterio-checker/internal/proxy"
	"github.com/GoPolymarket/xterio-checker/internal/rewards"
	"github.com/GoPolymarket/xterio-checker/internal/rewards/rewardstest"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			BaseURL:   rewardstest.BaseURL,
			UserAgent: "Mozilla/5.0",
			Accept:    "*/*",
			Referer:   "https://xter.io/",
			Origin:    "https://xter.io",
		},
		HTTP:    config.HTTPConfig{Timeout: 5 * time.Second},
		Checker: config.CheckerConfig{Workers: DefaultWorkers},
	}
}

// newKey returns a fresh private key in hex and its checksummed address.
func newKey(t *testing.T) (string, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return hexutil.Encode(crypto.FromECDSA(key)), crypto.PubkeyToAddress(key.PublicKey).Hex()
}

type countingSource struct {
	inner *proxy.Rotator
	calls atomic.Int64
}

func (c *countingSource) Next() (proxy.Endpoint, bool) {
	c.calls.Add(1)
	return c.inner.Next()
}

func TestCheckerSuccess(t *testing.T) {
	srv := rewardstest.NewServer()
	defer srv.Close()

	key, addr := newKey(t)
	srv.SetAccount(addr, rewardstest.Account{Points: 100, BonusPoints: 25})

	checker := NewChecker(testConfig(), proxy.NewRotator([]proxy.Endpoint{srv.Endpoint()}), logger.Nop())
	res := checker.Check(context.Background(), key)

	require.True(t, res.OK(), "unexpected failure: %v", res.Err)
	assert.Equal(t, model.Success(addr, 125), res)
}

func TestCheckerPausesBetweenLoginAndPoints(t *testing.T) {
	srv := rewardstest.NewServer()
	defer srv.Close()

	key, addr := newKey(t)
	srv.SetAccount(addr, rewardstest.Account{Points: 1})

	cfg := testConfig()
	cfg.Checker.Pause = config.DelayRange{Min: 150 * time.Millisecond, Max: 150 * time.Millisecond}
	checker := NewChecker(cfg, proxy.NewRotator([]proxy.Endpoint{srv.Endpoint()}), logger.Nop())

	start := time.Now()
	res := checker.Check(context.Background(), key)
	require.True(t, res.OK())
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestCheckerInvalidCredential(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Stdout: &buf})

	source := &countingSource{inner: proxy.NewRotator([]proxy.Endpoint{proxy.MustParseEndpoint("http://127.0.0.1:1")})}
	checker := NewChecker(testConfig(), source, log.Logger)

	secret := "0xnot-a-key-but-still-secret"
	res := checker.Check(context.Background(), secret)

	require.False(t, res.OK())
	assert.Equal(t, model.UnknownAddress, res.Address)
	assert.Equal(t, apperrors.ErrInvalidCredential, res.Err.Type)
	assert.Equal(t, int64(0), source.calls.Load(), "no proxy is consumed for an invalid key")
	assert.NotContains(t, buf.String(), secret)
	assert.Contains(t, buf.String(), "wallet check failed")
}

func TestCheckerNoProxy(t *testing.T) {
	key, addr := newKey(t)
	checker := NewChecker(testConfig(), proxy.NewRotator(nil), logger.Nop())

	res := checker.Check(context.Background(), key)

	require.False(t, res.OK())
	assert.Equal(t, addr, res.Address)
	assert.Equal(t, apperrors.ErrNoProxy, res.Err.Type)
}

func TestCheckerProtocolFailureIsLogged(t *testing.T) {
	srv := rewardstest.NewServer()
	defer srv.Close()

	key, addr := newKey(t)
	srv.SetAccount(addr, rewardstest.Account{FailStage: rewardstest.StageLoginChallenge})

	var buf bytes.Buffer
	log := logger.New(logger.Options{Stdout: &buf})
	checker := NewChecker(testConfig(), proxy.NewRotator([]proxy.Endpoint{srv.Endpoint()}), log.Logger)

	res := checker.Check(context.Background(), key)

	require.False(t, res.OK())
	assert.Equal(t, addr, res.Address)
	assert.Equal(t, apperrors.ErrProtocol, res.Err.Type)
	assert.Equal(t, rewards.StageLoginChallenge, res.Err.Stage)
	assert.Equal(t, http.StatusInternalServerError, res.Err.Status)

	logs := buf.String()
	assert.Contains(t, logs, `"stage":"login_challenge"`)
	assert.Contains(t, logs, `"status":500`)
	assert.Contains(t, logs, "internal error")
	assert.NotContains(t, logs, strings.TrimPrefix(key, "0x"))
}

func TestCheckerPauseInterrupted(t *testing.T) {
	srv := rewardstest.NewServer()
	defer srv.Close()

	key, addr := newKey(t)
	srv.SetAccount(addr, rewardstest.Account{Points: 1})

	cfg := testConfig()
	cfg.Checker.Pause = config.DelayRange{Min: 10 * time.Second, Max: 10 * time.Second}
	checker := NewChecker(cfg, proxy.NewRotator([]proxy.Endpoint{srv.Endpoint()}), logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	res := checker.Check(ctx, key)

	require.False(t, res.OK())
	assert.Equal(t, stagePause, res.Err.Stage)
	assert.Equal(t, 0, srv.Hits(rewardstest.StagePointsFetch))
}

func TestCheckerSpreadsWalletsOverProxies(t *testing.T) {
	first := rewardstest.NewServer()
	defer first.Close()
	second := rewardstest.NewServer()
	defer second.Close()

	rotator := proxy.NewRotator([]proxy.Endpoint{first.Endpoint(), second.Endpoint()})
	checker := NewChecker(testConfig(), rotator, logger.Nop())

	for i := 0; i < 4; i++ {
		key, _ := newKey(t)
		res := checker.Check(context.Background(), key)
		require.True(t, res.OK())
	}

	// Each wallet keeps one proxy for all three calls.
	assert.Equal(t, 2, first.Hits(rewardstest.StageLoginChallenge))
	assert.Equal(t, 2, first.Hits(rewardstest.StagePointsFetch))
	assert.Equal(t, 2, second.Hits(rewardstest.StageLoginChallenge))
	assert.Equal(t, 2, second.Hits(rewardstest.StagePointsFetch))
}
