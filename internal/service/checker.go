package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/GoPolymarket/xterio-checker/internal/config"
	"github.com/GoPolymarket/xterio-checker/internal/model"
	"github.com/GoPolymarket/xterio-checker/internal/pkg/apperrors"
	"github.com/GoPolymarket/xterio-checker/internal/proxy"
	"github.com/GoPolymarket/xterio-checker/internal/rewards"
	"github.com/GoPolymarket/xterio-checker/internal/signer"
)

const stagePause = "pause"

type ProxySource interface {
	Next() (proxy.Endpoint, bool)
}

// ClientFactory builds a fresh rewards client bound to one proxy.
type ClientFactory func(ep proxy.Endpoint) (*rewards.Client, error)

// Checker runs the full protocol for a single wallet.
type Checker struct {
	proxies   ProxySource
	newClient ClientFactory
	pause     config.DelayRange
	log       *slog.Logger
}

func NewChecker(cfg *config.Config, proxies ProxySource, log *slog.Logger) *Checker {
	return &Checker{
		proxies: proxies,
		newClient: func(ep proxy.Endpoint) (*rewards.Client, error) {
			return rewards.NewClient(cfg.API, cfg.HTTP.Timeout, ep)
		},
		pause: cfg.Checker.Pause,
		log:   log,
	}
}

// Check never returns an error; every problem becomes a Failure result.
func (c *Checker) Check(ctx context.Context, credential string) model.CheckResult {
	// 1. Resolve identity
	wallet, err := signer.NewSigner(credential)
	if err != nil {
		return c.failed(ctx, model.UnknownAddress, err)
	}
	address := wallet.Address().Hex()

	// 2. Acquire proxy
	ep, ok := c.proxies.Next()
	if !ok {
		return c.failed(ctx, address, apperrors.NewNoProxy())
	}
	log := c.log.With("address", address, "proxy", ep.String())

	client, err := c.newClient(ep)
	if err != nil {
		return c.failed(ctx, address, apperrors.New(apperrors.ErrUnexpectedFault, "failed to build client", err), "proxy", ep.String())
	}
	defer client.Close()

	// 3. Authenticate
	if err := client.Login(ctx, wallet); err != nil {
		return c.failed(ctx, address, err, "proxy", ep.String())
	}
	log.Debug("authenticated")

	// 4. Let the fresh session settle before asking for points
	if err := sleep(ctx, c.pause.GetRandomDelay()); err != nil {
		appErr := apperrors.New(apperrors.ErrUnexpectedFault, "interrupted before points request", err)
		appErr.Stage = stagePause
		return c.failed(ctx, address, appErr, "proxy", ep.String())
	}

	// 5. Points
	tally, err := client.Points(ctx)
	if err != nil {
		return c.failed(ctx, address, err, "proxy", ep.String())
	}

	log.Info("wallet checked", "points", tally.Points, "bonus_points", tally.BonusPoints, "balance", tally.Total())
	return model.Success(address, tally.Total())
}

func (c *Checker) failed(ctx context.Context, address string, err error, extra ...any) model.CheckResult {
	res := model.Failure(address, err)
	args := append([]any{
		"address", res.Address,
		"kind", res.Err.Type,
	}, extra...)
	if res.Err.Stage != "" {
		args = append(args, "stage", res.Err.Stage)
	}
	if res.Err.Status != 0 {
		args = append(args, "status", res.Err.Status)
	}
	if res.Err.Body != "" {
		args = append(args, "body", res.Err.Body)
	}
	if res.Err.Hint != "" {
		args = append(args, "hint", res.Err.Hint)
	}
	args = append(args, "error", res.Err.Error())
	c.log.ErrorContext(ctx, "wallet check failed", args...)
	return res
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
