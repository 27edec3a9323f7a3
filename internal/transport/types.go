//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE
package transport

import (
	"context"
	"time"

	"github.com/goodnatureofminers/plasticledger-backend/internal/model"
	"github.com/goodnatureofminers/plasticledger-backend/internal/repository/clickhouse"
)

type Assessor interface {
	Assess(ctx context.Context, imagePath string) (model.Block, error)
	VerifyChain(ctx context.Context) (model.Verification, error)
}

type UploadStore interface {
	Save(data []byte) (string, error)
	Remove(path string) error
}

type StatsReader interface {
	MaterialSummary(ctx context.Context, since time.Time) ([]clickhouse.MaterialSummary, error)
}

type Metrics interface {
	ObserveRequest(route string, code int, started time.Time)
}
