// Package fetch downloads every document of a job, one identifier after the other.
package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Belphemur/BatchFetch/internal/apperrors"
	"github.com/Belphemur/BatchFetch/internal/cache"
	"github.com/Belphemur/BatchFetch/internal/config"
	"github.com/Belphemur/BatchFetch/internal/job"
	"github.com/Belphemur/BatchFetch/internal/models"
	"github.com/Belphemur/BatchFetch/internal/parser"
	"github.com/Belphemur/BatchFetch/internal/retry"
)

// maxErrorBody bounds how much of an error page is read for diagnostics.
const maxErrorBody = 64 << 10

// Observer is notified around every identifier. Implementations must not block.
type Observer interface {
	OnStart(j *job.Job, target models.FetchTarget)
	OnResult(j *job.Job, result models.FetchResult)
}

// Observers fans events out to several observers, in order.
type Observers []Observer

func (o Observers) OnStart(j *job.Job, target models.FetchTarget) {
	for _, obs := range o {
		obs.OnStart(j, target)
	}
}

func (o Observers) OnResult(j *job.Job, result models.FetchResult) {
	for _, obs := range o {
		obs.OnResult(j, result)
	}
}

// Options tune a Fetcher. The zero value retries with retry.DefaultPolicy and
// sends unconditional requests.
type Options struct {
	Policy retry.Policy

	// Validators enables conditional requests when set.
	Validators *cache.ValidatorStore

	Observer Observer
}

// Fetcher downloads the targets of a job. It holds no per-run state and can be
// reused for several jobs, sequentially.
type Fetcher struct {
	httpClient *http.Client
	policy     retry.Policy
	validators *cache.ValidatorStore
	observer   Observer
}

// New creates a Fetcher sending its requests through httpClient.
func New(httpClient *http.Client, opts Options) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	policy := opts.Policy
	if policy == (retry.Policy{}) {
		policy = retry.DefaultPolicy()
	}
	return &Fetcher{
		httpClient: httpClient,
		policy:     policy,
		validators: opts.Validators,
		observer:   opts.Observer,
	}
}

// attemptOutcome is what a successful attempt leaves behind.
type attemptOutcome struct {
	status     models.FetchStatus
	bytes      int64
	validators cache.Validators
}

// FetchOne resolves a single identifier of j.
//
// A per-identifier failure is reported as a StatusFailed result with a nil
// error. The returned error is non-nil only when the batch must stop: a local
// I/O failure, an unusable template or a cancelled context.
func (f *Fetcher) FetchOne(ctx context.Context, j *job.Job, id int) (models.FetchResult, error) {
	logger := config.GetLogger()
	started := time.Now()

	target, err := j.Target(id)
	if err != nil {
		return models.FetchResult{Target: models.FetchTarget{ID: id}}, err
	}
	if f.observer != nil {
		f.observer.OnStart(j, target)
	}
	result := models.FetchResult{Target: target}

	existing := existingSize(target.Path)
	if j.SkipExisting && existing > 0 {
		result.Status = models.StatusSkipped
		result.Bytes = existing
		result.Duration = time.Since(started)
		logger.Debug().Int("id", id).Str("path", target.Path).Msg("File already present, skipping")
		f.notify(j, result)
		return result, nil
	}

	var validators cache.Validators
	if f.validators != nil && existing > 0 {
		validators, _ = f.validators.Get(target.URL)
	}

	outcome, attempts, err := retry.Do(ctx, f.policy, func(attempt int) (attemptOutcome, error) {
		logger.Debug().Int("id", id).Str("url", target.URL).Int("attempt", attempt).Msg("Requesting document")
		return f.attempt(ctx, target, validators)
	}, func(failedAttempt int, err error) {
		logger.Warn().
			Err(err).
			Int("id", id).
			Str("url", target.URL).
			Int("attempt", failedAttempt).
			Int("max_attempts", f.policy.MaxAttempts).
			Msg("Attempt failed, retrying")
	})
	result.Attempts = attempts
	result.Duration = time.Since(started)

	if err != nil {
		var localErr *apperrors.ErrLocalIO
		if errors.As(err, &localErr) {
			logger.Error().Err(localErr).Int("id", id).Msg("Local I/O failure, stopping")
			return result, localErr
		}
		if ctx.Err() != nil {
			return result, err
		}
		result.Status = models.StatusFailed
		result.Err = &apperrors.ErrFetchFailed{ID: id, URL: target.URL, Attempts: attempts, Err: err}
		logger.Warn().
			Err(err).
			Int("id", id).
			Str("url", target.URL).
			Int("attempts", attempts).
			Msg("Giving up on identifier")
		f.notify(j, result)
		return result, nil
	}

	result.Status = outcome.status
	result.Bytes = outcome.bytes
	if f.validators != nil {
		switch outcome.status {
		case models.StatusSaved:
			f.validators.Put(target.URL, outcome.validators)
		case models.StatusEmpty:
			f.validators.Forget(target.URL)
		}
	}
	if outcome.status == models.StatusUnchanged {
		result.Bytes = existing
	}

	logger.Debug().
		Int("id", id).
		Str("status", result.Status.String()).
		Int64("bytes", result.Bytes).
		Int("attempts", attempts).
		Dur("duration", result.Duration).
		Msg("Identifier resolved")
	f.notify(j, result)
	return result, nil
}

func (f *Fetcher) notify(j *job.Job, result models.FetchResult) {
	if f.observer != nil {
		f.observer.OnResult(j, result)
	}
}

// attempt performs one GET and, on success, leaves the body at target.Path.
func (f *Fetcher) attempt(ctx context.Context, target models.FetchTarget, validators cache.Validators) (attemptOutcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return attemptOutcome{}, retry.Permanent(err)
	}
	validators.Apply(req)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return attemptOutcome{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && !validators.IsZero() {
		return attemptOutcome{status: models.StatusUnchanged}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		title := parser.ErrorPageTitle(io.LimitReader(resp.Body, maxErrorBody), resp.Header.Get("Content-Type"))
		return attemptOutcome{}, &apperrors.ErrHTTPStatus{
			URL:        target.URL,
			StatusCode: resp.StatusCode,
			Title:      title,
		}
	}

	d, err := writeTemp(target.Path, resp.Body)
	if err != nil {
		return attemptOutcome{}, err
	}

	if d.size == 0 {
		d.discard()
		// A stale copy from an earlier run must not survive an empty answer.
		if err := removeIfExists(target.Path); err != nil {
			return attemptOutcome{}, err
		}
		return attemptOutcome{status: models.StatusEmpty}, nil
	}

	if err := d.commit(); err != nil {
		return attemptOutcome{}, err
	}
	return attemptOutcome{
		status:     models.StatusSaved,
		bytes:      d.size,
		validators: cache.ValidatorsFromHeader(resp.Header),
	}, nil
}
