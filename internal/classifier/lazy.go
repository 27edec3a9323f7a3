package classifier

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

// Lazy defers building a Classifier until the first Classify call and builds it
// at most once. A failed build is remembered and returned to every caller.
type Lazy struct {
	build func(ctx context.Context) (Classifier, error)

	once sync.Once
	c    Classifier
	err  error
}

// NewLazy wraps build in a Lazy classifier.
func NewLazy(build func(ctx context.Context) (Classifier, error)) (*Lazy, error) {
	if build == nil {
		return nil, errors.New("classifier builder is required")
	}
	return &Lazy{build: build}, nil
}

// Warm builds the underlying classifier now instead of on first use.
func (l *Lazy) Warm(ctx context.Context) error {
	_, err := l.get(ctx)
	return err
}

// Classify implements Classifier.
func (l *Lazy) Classify(ctx context.Context, imagePath string) (model.Material, error) {
	c, err := l.get(ctx)
	if err != nil {
		return "", err
	}
	return c.Classify(ctx, imagePath)
}

func (l *Lazy) get(ctx context.Context) (Classifier, error) {
	l.once.Do(func() {
		l.c, l.err = l.build(ctx)
		if l.err == nil && l.c == nil {
			l.err = errors.New("classifier builder returned nil")
		}
		if l.err != nil {
			l.err = fmt.Errorf("initialize classifier: %w", l.err)
		}
	})
	return l.c, l.err
}
