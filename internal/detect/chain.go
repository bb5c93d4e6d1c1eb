package detect

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"live-translator/internal/domain"
)

// Detector is the language detection contract shared by all providers.
type Detector interface {
	Detect(ctx context.Context, text string) (domain.LanguageCode, error)
}

// Chain tries each detector in order and returns the first answer.
type Chain struct {
	detectors []Detector
	logger    *zap.SugaredLogger
}

// NewChain builds a fallback chain; nil detectors are skipped.
func NewChain(logger *zap.SugaredLogger, detectors ...Detector) *Chain {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	kept := make([]Detector, 0, len(detectors))
	for _, d := range detectors {
		if d != nil {
			kept = append(kept, d)
		}
	}
	return &Chain{detectors: kept, logger: logger}
}

// Detect stops at the first success or when ctx is done.
func (c *Chain) Detect(ctx context.Context, text string) (domain.LanguageCode, error) {
	var errs []error
	for i, d := range c.detectors {
		code, err := d.Detect(ctx, text)
		if err == nil {
			return code, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", err
		}
		c.logger.Debugw("detector failed, trying next", "index", i, "error", err)
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		errs = append(errs, errors.New("no detectors configured"))
	}
	return "", &domain.ServiceError{
		Kind:    domain.ErrorKindDetection,
		Op:      "detect",
		Message: "all detectors failed",
		Err:     errors.Join(errs...),
	}
}
