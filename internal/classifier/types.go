// Package classifier resolves the resin type of a sample photo.
package classifier

import (
	"context"
	"time"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Classifier interface {
		Classify(ctx context.Context, imagePath string) (model.Material, error)
	}
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)
