// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/store"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrLinkTooLarge is returned when an encoded share link exceeds the
	// configured ceiling. The caller chooses between a truncated link
	// and the tabular-export fallback.
	ErrLinkTooLarge = errors.New("share link exceeds length ceiling")

	// ErrNothingToShare is returned for an empty snapshot.
	ErrNothingToShare = errors.New("no workouts to share")
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

var tokenBytesHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "workouttrackr_transfer_token_bytes",
	Help:    "Encoded share token length in bytes",
	Buckets: []float64{256, 512, 1024, 2048, 4096, 8192, 16384},
}, []string{"option"})

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// Config configures the transfer orchestrator.
type Config struct {
	// MaxLinkLength is the hard ceiling on the full link length.
	// Default: 8192 characters.
	MaxLinkLength int

	// TruncateCount is how many most-recent workouts a truncated
	// snapshot keeps. Default: 100.
	TruncateCount int

	// BaseURL is the link prefix; the token is carried in the fragment.
	BaseURL string
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxLinkLength: 8192,
		TruncateCount: 100,
		BaseURL:       "https://workouttrackr.app/",
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxLinkLength <= len(c.BaseURL)+len(TokenTag) {
		return fmt.Errorf("max_link_length %d leaves no room for a token", c.MaxLinkLength)
	}
	if c.TruncateCount <= 0 {
		return errors.New("truncate_count must be positive")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Share option
// -----------------------------------------------------------------------------

// ShareOption records which transfer path produced a link.
type ShareOption int

const (
	// ShareFull carries the complete snapshot.
	ShareFull ShareOption = iota

	// SharePartial carries only the most recent workouts, flagged
	// isPartial with the original count.
	SharePartial
)

// String returns "full" or "partial".
func (o ShareOption) String() string {
	if o == SharePartial {
		return "partial"
	}
	return "full"
}

// ShareLink is a constructed shareable URL.
type ShareLink struct {
	// URL is the full link: BaseURL + "#" + token.
	URL string

	// Token is the encoded snapshot without the URL prefix.
	Token string

	// Option says whether the link carries a full or truncated snapshot.
	Option ShareOption

	// WorkoutCount is the number of workouts inside the link.
	// OriginalCount is the pre-truncation count (equal for ShareFull).
	WorkoutCount  int
	OriginalCount int
}

// -----------------------------------------------------------------------------
// Orchestrator
// -----------------------------------------------------------------------------

// Orchestrator builds share links within the transport ceiling and drives
// confirmed imports into the workout store.
type Orchestrator struct {
	cfg    Config
	store  *store.Store
	logger *slog.Logger
}

// NewOrchestrator creates an orchestrator bound to a store.
func NewOrchestrator(cfg Config, st *store.Store, logger *slog.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("transfer config: %w", err)
	}
	if st == nil {
		return nil, errors.New("store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{cfg: cfg, store: st, logger: logger}, nil
}

// BuildShareLink encodes the full snapshot.
//
// Outputs:
//
//	*ShareLink - The link, when it fits the ceiling.
//	error - ErrLinkTooLarge when it does not; the caller then chooses
//	        BuildTruncatedShareLink or the tabular-export fallback.
func (o *Orchestrator) BuildShareLink(snap workout.Snapshot) (*ShareLink, error) {
	if len(snap.Workouts) == 0 {
		return nil, ErrNothingToShare
	}
	return o.buildLink(snap, ShareFull, len(snap.Workouts))
}

// BuildTruncatedShareLink encodes a snapshot truncated to the most recent
// TruncateCount workouts, sorted descending by date, flagged partial.
// The result is re-checked against the same ceiling.
func (o *Orchestrator) BuildTruncatedShareLink(snap workout.Snapshot) (*ShareLink, error) {
	if len(snap.Workouts) == 0 {
		return nil, ErrNothingToShare
	}

	truncated := snap.Clone()
	sort.SliceStable(truncated.Workouts, func(i, j int) bool {
		return truncated.Workouts[i].Date > truncated.Workouts[j].Date
	})
	if len(truncated.Workouts) > o.cfg.TruncateCount {
		truncated.Workouts = truncated.Workouts[:o.cfg.TruncateCount]
	}
	truncated.IsPartial = true
	truncated.OriginalCount = len(snap.Workouts)

	return o.buildLink(truncated, SharePartial, len(snap.Workouts))
}

// BuildBestShareLink tries the full snapshot first and falls back to the
// truncated one. ErrLinkTooLarge from here means even the truncated link
// does not fit and the tabular export is the only remaining option.
func (o *Orchestrator) BuildBestShareLink(snap workout.Snapshot) (*ShareLink, error) {
	link, err := o.BuildShareLink(snap)
	if err == nil {
		return link, nil
	}
	if !errors.Is(err, ErrLinkTooLarge) {
		return nil, err
	}
	o.logger.Info("full share link over ceiling; truncating",
		slog.Int("workouts", len(snap.Workouts)),
		slog.Int("keep", o.cfg.TruncateCount))
	return o.BuildTruncatedShareLink(snap)
}

func (o *Orchestrator) buildLink(snap workout.Snapshot, option ShareOption, originalCount int) (*ShareLink, error) {
	token, err := Encode(snap)
	if err != nil {
		return nil, err
	}
	url := o.cfg.BaseURL + "#" + token
	tokenBytesHistogram.WithLabelValues(option.String()).Observe(float64(len(token)))

	if len(url) > o.cfg.MaxLinkLength {
		return nil, fmt.Errorf("%w: %d > %d (%s)", ErrLinkTooLarge, len(url), o.cfg.MaxLinkLength, option)
	}
	return &ShareLink{
		URL:           url,
		Token:         token,
		Option:        option,
		WorkoutCount:  len(snap.Workouts),
		OriginalCount: originalCount,
	}, nil
}

// -----------------------------------------------------------------------------
// Import
// -----------------------------------------------------------------------------

// PendingImport is a decoded snapshot awaiting explicit confirmation.
// Import never silently replaces existing data: the snapshot is applied
// only when Confirm is called.
type PendingImport struct {
	Snapshot   workout.Snapshot
	Generation TokenGeneration

	orch    *Orchestrator
	applied bool
}

// ImportSharedLink decodes a shared link or bare token into a pending
// import.
//
// Description:
//
//	Accepts a bare token, a full share URL, or anything in between: the
//	BaseURL prefix and fragment separator are stripped before decoding.
//	The encoding generation is detected from the format tag. Decode
//	failures are reported whole ("link may be corrupted"); nothing is
//	ever partially applied.
func (o *Orchestrator) ImportSharedLink(link string) (*PendingImport, error) {
	token := o.extractToken(link)
	snap, gen, err := DecodeToken(token)
	if err != nil {
		o.logger.Warn("share link rejected",
			slog.String("generation", gen.String()),
			slog.String("error", err.Error()))
		return nil, err
	}
	o.logger.Info("share link decoded",
		slog.String("generation", gen.String()),
		slog.Int("workouts", len(snap.Workouts)),
		slog.Bool("partial", snap.IsPartial))
	return &PendingImport{Snapshot: snap, Generation: gen, orch: o}, nil
}

// Confirm applies the pending import, replacing the store contents and
// persisting them. Calling Confirm twice is an error.
func (p *PendingImport) Confirm(ctx context.Context) error {
	if p.applied {
		return errors.New("import already applied")
	}
	if err := p.orch.store.ReplaceAll(ctx, p.Snapshot.Workouts); err != nil {
		return err
	}
	p.applied = true
	return nil
}

// extractToken strips the configured BaseURL and URL separators so both
// bare tokens and full links decode.
func (o *Orchestrator) extractToken(link string) string {
	token := strings.TrimSpace(link)
	token = strings.TrimPrefix(token, o.cfg.BaseURL)
	if i := strings.LastIndexByte(token, '#'); i >= 0 {
		token = token[i+1:]
	}
	return token
}
