package musicbrainz

import (
	"context"
	"fmt"
	"net/http"
)

const (
	coverArtBaseURL = "https://coverartarchive.org"
)

// CoverSize selects a Cover Art Archive thumbnail.
type CoverSize int

const (
	CoverOriginal CoverSize = 0
	CoverSmall    CoverSize = 250
	CoverMedium   CoverSize = 500
	CoverLarge    CoverSize = 1200
)

// CoverArt fetches the front cover of a release from the Cover Art Archive.
// It returns nil, nil when the release has no cover art.
func (c *Client) CoverArt(ctx context.Context, releaseMBID string, size CoverSize) ([]byte, error) {
	if !ValidMBID(releaseMBID) {
		return nil, dataError(fmt.Sprintf("invalid MBID %q", releaseMBID), nil)
	}

	reqURL := fmt.Sprintf("%s/release/%s/front", c.opts.CoverArtURL, releaseMBID)
	if size != CoverOriginal {
		reqURL = fmt.Sprintf("%s-%d", reqURL, size)
	}

	status, data, err := c.do(ctx, reqURL, "image/*")
	if err != nil {
		return nil, err
	}

	// 404 means no cover art available - not an error
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, statusError(status, nil)
	}
	return data, nil
}
