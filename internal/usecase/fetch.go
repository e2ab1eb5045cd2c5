package usecase

import (
	"context"

	"github.com/showleague/standings/internal/domain/game"
	"github.com/showleague/standings/internal/platform/logging"
)

// HistoryFetcher fetches one page of remote game history for one identity.
type HistoryFetcher interface {
	GameHistory(ctx context.Context, username string, page int) ([]game.Record, error)
}

// fetchPages pulls every configured page for every identity. A failed page
// degrades to an empty one with a warning, so a flaky provider reads the
// same as a provider with no data.
func fetchPages(ctx context.Context, fetcher HistoryFetcher, logger *logging.Logger, identities []string, pages int) []game.Record {
	var out []game.Record
	for _, identity := range identities {
		for page := 1; page <= pages; page++ {
			records, err := fetcher.GameHistory(ctx, identity, page)
			if err != nil {
				logger.WarnContext(ctx, "game history page unavailable",
					"identity", identity, "page", page, "error", err)
				continue
			}
			out = append(out, records...)
		}
	}
	return out
}
