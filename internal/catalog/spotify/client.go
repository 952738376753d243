package spotify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"soundmatch/internal/logging"
	"soundmatch/internal/resolve"
)

const (
	memberPageSize = 50
	albumBatchSize = 20
)

// Options configures a Client.
type Options struct {
	ClientID          string
	ClientSecret      string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	// TokenURL and BaseURL override the Spotify endpoints (tests, proxies).
	TokenURL string
	BaseURL  string
	Logger   *slog.Logger
}

// Client adapts the Spotify Web API to the resolve ports. Candidate ids are
// Spotify URIs ("spotify:album:…") so member and related lookups know what
// kind of record they address.
type Client struct {
	api     *spotifyapi.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ resolve.Catalog = (*Client)(nil)

// New builds a client authenticated with the client-credentials flow. The
// token is fetched lazily on the first request.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.ClientID) == "" || strings.TrimSpace(opts.ClientSecret) == "" {
		return nil, errors.New("spotify client id and secret required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	creds := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     tokenURL,
	}
	base := &http.Client{
		Timeout:   timeout,
		Transport: refusalTransport{base: http.DefaultTransport, now: time.Now},
	}
	httpClient := creds.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	httpClient.Timeout = timeout

	var clientOpts []spotifyapi.ClientOption
	if opts.BaseURL != "" {
		baseURL := opts.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		clientOpts = append(clientOpts, spotifyapi.WithBaseURL(baseURL))
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		api:     spotifyapi.New(httpClient, clientOpts...),
		limiter: rate.NewLimiter(rate.Limit(rps), max(opts.Burst, 1)),
		logger:  logging.NewComponentLogger(opts.Logger, "spotify"),
	}, nil
}

func (c *Client) wait(ctx context.Context, op string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return classify(op, err)
	}
	return nil
}

// Search implements resolve.Searcher. scope is a market code; "" searches
// without a market restriction.
func (c *Client) Search(ctx context.Context, query string, entity resolve.EntityType, scope string, limit int) ([]resolve.Candidate, error) {
	searchType, err := searchTypeFor(entity)
	if err != nil {
		return nil, err
	}
	if err := c.wait(ctx, "search"); err != nil {
		return nil, err
	}
	opts := []spotifyapi.RequestOption{spotifyapi.Limit(min(max(limit, 1), resolve.MaxPageSize))}
	if scope = strings.TrimSpace(scope); scope != "" {
		opts = append(opts, spotifyapi.Market(scope))
	}

	start := time.Now()
	result, err := c.api.Search(ctx, query, searchType, opts...)
	if err != nil {
		return nil, classify("search", err)
	}
	c.logger.Debug("spotify search",
		logging.String("query", query),
		logging.String("entity", string(entity)),
		logging.String("market", scope),
		logging.Duration("latency", time.Since(start)),
	)

	switch entity {
	case resolve.EntityAlbum:
		if result.Albums == nil {
			return nil, nil
		}
		candidates := albumCandidates(result.Albums.Albums)
		c.enrichAlbums(ctx, candidates)
		return candidates, nil
	case resolve.EntityPlaylist:
		if result.Playlists == nil {
			return nil, nil
		}
		return playlistCandidates(result.Playlists.Playlists), nil
	case resolve.EntityArtist:
		if result.Artists == nil {
			return nil, nil
		}
		return artistCandidates(result.Artists.Artists), nil
	default:
		if result.Tracks == nil {
			return nil, nil
		}
		return trackCandidates(result.Tracks.Tracks), nil
	}
}

// enrichAlbums fills track counts from the full album records. Failures
// leave counts unknown.
func (c *Client) enrichAlbums(ctx context.Context, candidates []resolve.Candidate) {
	index := make(map[spotifyapi.ID]int, len(candidates))
	ids := make([]spotifyapi.ID, 0, len(candidates))
	for i, cand := range candidates {
		_, id, ok := ParseURI(cand.ID)
		if !ok {
			continue
		}
		index[id] = i
		ids = append(ids, id)
	}
	for startIdx := 0; startIdx < len(ids); startIdx += albumBatchSize {
		batch := ids[startIdx:min(startIdx+albumBatchSize, len(ids))]
		if err := c.wait(ctx, "get albums"); err != nil {
			return
		}
		albums, err := c.api.GetAlbums(ctx, batch)
		if err != nil {
			logging.WarnWithContext(c.logger, "album enrichment failed",
				"album_enrichment_failed",
				logging.Int("albums", len(batch)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "catalog may be rate limiting"),
				logging.String(logging.FieldImpact, "track counts unknown for this batch"),
			)
			continue
		}
		for _, full := range albums {
			if full == nil {
				continue
			}
			if i, ok := index[full.ID]; ok {
				candidates[i].MemberCount = int(full.Tracks.Total)
				candidates[i].Popularity = int(full.Popularity)
			}
		}
	}
}

// ListMembers implements resolve.MemberLister for album and playlist URIs.
// The cursor is the decimal offset of the next page.
func (c *Client) ListMembers(ctx context.Context, containerID, cursor string) (resolve.MemberPage, error) {
	kind, id, ok := ParseURI(containerID)
	if !ok {
		return resolve.MemberPage{}, fmt.Errorf("spotify list members: unsupported id %q", containerID)
	}
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return resolve.MemberPage{}, fmt.Errorf("spotify list members: invalid cursor %q", cursor)
		}
		offset = n
	}
	if err := c.wait(ctx, "list members"); err != nil {
		return resolve.MemberPage{}, err
	}
	opts := []spotifyapi.RequestOption{spotifyapi.Limit(memberPageSize), spotifyapi.Offset(offset)}

	var (
		items []resolve.Candidate
		total int
	)
	switch kind {
	case "playlist":
		page, err := c.api.GetPlaylistItems(ctx, id, opts...)
		if err != nil {
			return resolve.MemberPage{}, classify("playlist items", err)
		}
		total = int(page.Total)
		for _, item := range page.Items {
			if item.Track.Track == nil {
				// Episodes and removed tracks still count toward the sample.
				items = append(items, resolve.Candidate{Kind: resolve.KindItem, Entity: resolve.EntityTrack})
				continue
			}
			items = append(items, trackCandidate(*item.Track.Track))
		}
	case "album":
		page, err := c.api.GetAlbumTracks(ctx, id, opts...)
		if err != nil {
			return resolve.MemberPage{}, classify("album tracks", err)
		}
		total = int(page.Total)
		for _, track := range page.Tracks {
			items = append(items, simpleTrackCandidate(track))
		}
	default:
		return resolve.MemberPage{}, fmt.Errorf("spotify list members: %s is not a container", kind)
	}

	result := resolve.MemberPage{Items: items}
	if next := offset + len(items); len(items) > 0 && next < total {
		result.Next = strconv.Itoa(next)
	}
	return result, nil
}

// RelatedOf implements resolve.RelatedFinder for artist URIs.
func (c *Client) RelatedOf(ctx context.Context, id string) ([]resolve.Candidate, error) {
	kind, artistID, ok := ParseURI(id)
	if !ok || kind != "artist" {
		return nil, fmt.Errorf("spotify related: unsupported id %q", id)
	}
	if err := c.wait(ctx, "related artists"); err != nil {
		return nil, err
	}
	artists, err := c.api.GetRelatedArtists(ctx, artistID)
	if err != nil {
		return nil, classify("related artists", err)
	}
	return artistCandidates(artists), nil
}

func searchTypeFor(entity resolve.EntityType) (spotifyapi.SearchType, error) {
	switch entity {
	case resolve.EntityAlbum:
		return spotifyapi.SearchTypeAlbum, nil
	case resolve.EntityPlaylist:
		return spotifyapi.SearchTypePlaylist, nil
	case resolve.EntityArtist:
		return spotifyapi.SearchTypeArtist, nil
	case resolve.EntityTrack:
		return spotifyapi.SearchTypeTrack, nil
	default:
		return 0, fmt.Errorf("spotify search: unsupported entity %q", entity)
	}
}
