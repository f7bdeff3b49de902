package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_playlist/internal/engine"
	"github.com/anatolykoptev/go_playlist/internal/engine/fragment"
)

// session is the per-harvest context replayed on every continuation request.
type session struct {
	locator string
	key     string
}

func (s session) withKey(key string) session {
	s.key = key
	return s
}

// cursor points at the next continuation page.
type cursor struct {
	token    string
	endpoint string
}

type harvestResult struct {
	ids   []string
	title string
	pages int // bootstrap page included
}

// bootstrapState is what the playlist page yields before any continuation.
type bootstrapState struct {
	ids   idSet
	cur   cursor
	key   string
	title string
}

// readBootstrap interprets every fragment embedded in the playlist page.
// Ids are merged in order; the last token, endpoint and key seen win.
func readBootstrap(page string) *bootstrapState {
	st := &bootstrapState{}
	nodes, skipped := fragment.ExtractWithSkipped(page)
	engine.AddFragments(len(nodes), skipped)

	for _, n := range nodes {
		if pr, ok := interpretPage(n); ok {
			st.ids.addAll(pr.IDs)
			if pr.Token != "" {
				st.cur.token = pr.Token
			}
			if pr.Endpoint != "" {
				st.cur.endpoint = pr.Endpoint
			}
		}
		if key, ok := accessKey(n); ok {
			st.key = key
		}
	}
	return st
}

// harvest runs bootstrap then pagination for one locator. Any error discards
// everything collected so far.
func (c *YouTubePlaylistClient) harvest(ctx context.Context, locator string) (harvestResult, error) {
	start := time.Now()
	log := slog.With(slog.String("run", uuid.NewString()), slog.String("locator", locator))

	f, err := c.newFetcher()
	if err != nil {
		return harvestResult{}, fmt.Errorf("youtube playlist session: %w", err)
	}

	engine.IncrBootstrapFetches()
	page, err := engine.FetchPage(ctx, f, locator)
	if err != nil {
		return harvestResult{}, fmt.Errorf("youtube playlist bootstrap: %w", err)
	}

	st := readBootstrap(page)
	st.title = pageTitle(page)
	log.Debug("youtube playlist bootstrap",
		slog.Int("ids", st.ids.len()),
		slog.Bool("token", st.cur.token != ""),
		slog.String("endpoint", st.cur.endpoint),
		slog.Bool("key", st.key != ""),
	)

	if st.cur.token == "" {
		if st.ids.len() == 0 {
			return harvestResult{}, fmt.Errorf("%w: %q", ErrEmptyPlaylist, locator)
		}
		log.Info("youtube playlist harvested", slog.Int("videos", st.ids.len()), slog.Int("pages", 1),
			slog.Duration("elapsed", time.Since(start)))
		return harvestResult{ids: st.ids.items(), title: st.title, pages: 1}, nil
	}
	if st.cur.endpoint == "" {
		return harvestResult{}, fmt.Errorf("%w: continuation endpoint missing for %q", ErrProtocolInconsistency, locator)
	}
	if st.key == "" {
		return harvestResult{}, fmt.Errorf("%w: api key missing for %q", ErrProtocolInconsistency, locator)
	}

	requests, err := c.paginate(ctx, log, f, session{locator: locator, key: st.key}, st.cur, &st.ids)
	if err != nil {
		return harvestResult{}, err
	}

	log.Info("youtube playlist harvested", slog.Int("videos", st.ids.len()), slog.Int("pages", requests+1),
		slog.Duration("elapsed", time.Since(start)))
	return harvestResult{ids: st.ids.items(), title: st.title, pages: requests + 1}, nil
}

// paginate follows continuation tokens until a page carries none and returns
// the number of continuation requests made.
func (c *YouTubePlaylistClient) paginate(ctx context.Context, log *slog.Logger, f engine.Fetcher, sess session, cur cursor, ids *idSet) (int, error) {
	limit := rate.Inf
	if c.interval > 0 {
		limit = rate.Every(c.interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	// Tokens already requested; revisiting one without new ids is a cycle.
	seen := map[string]struct{}{}
	requests := 0
	for cur.token != "" {
		if c.maxPages > 0 && requests >= c.maxPages {
			log.Warn("youtube playlist: page cap reached, stopping", slog.Int("max_pages", c.maxPages))
			break
		}
		if err := limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("youtube playlist continuation: %w", waitErr(ctx, err))
		}

		seen[cur.token] = struct{}{}
		engine.IncrContinuationFetches()
		body, err := engine.PostJSON(ctx, f, c.continuationURL(sess, cur),
			innertubeHeaders(c.origin, sess.locator), newContinuationReq(sess.locator, cur.token))
		requests++
		if err != nil {
			return 0, fmt.Errorf("youtube playlist continuation page %d: %w", requests, err)
		}

		n, err := fragment.Parse(body)
		if err != nil {
			log.Warn("youtube playlist: malformed continuation payload, treating as end of data",
				slog.Int("page", requests), slog.Any("error", err))
			break
		}
		pr, ok := interpretPage(n)
		if !ok {
			log.Debug("youtube playlist: continuation carries no items, end of data", slog.Int("page", requests))
			break
		}

		added := ids.addAll(pr.IDs)
		if key, ok := accessKey(n); ok {
			sess = sess.withKey(key)
		}

		next := cursor{token: pr.Token, endpoint: cur.endpoint}
		if pr.Endpoint != "" {
			next.endpoint = pr.Endpoint
		}
		log.Debug("youtube playlist page",
			slog.Int("page", requests), slog.Int("ids", len(pr.IDs)), slog.Int("new", added),
			slog.Bool("token", next.token != ""))

		if _, dup := seen[next.token]; dup && next.token != "" && added == 0 {
			log.Warn("youtube playlist: continuation token repeated without progress, stopping",
				slog.Int("page", requests), slog.Int("tokens", len(seen)))
			break
		}
		cur = next
	}
	return requests, nil
}

// waitErr normalizes a limiter failure. rate.Limiter refuses a wait that
// would outlive the deadline without wrapping context.DeadlineExceeded.
func waitErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

// continuationURL resolves the cursor endpoint against the origin.
func (c *YouTubePlaylistClient) continuationURL(sess session, cur cursor) string {
	return c.origin + cur.endpoint + "?key=" + url.QueryEscape(sess.key) + "&prettyPrint=false"
}
