// Package discovery finds the recent posts on a profile page that have not
// been captured yet and extracts their fields.
//
// One discovery pass:
//   - waits a bounded time for the post grid, degrading to whatever rendered
//   - scrolls once to trigger lazy loading
//   - collects post links in page order, truncated to the configured maximum
//   - drops links already persisted; a failed dedup lookup keeps the link,
//     since re-extracting a saved post is recoverable and losing one is not
//   - visits each remaining post page, pulls image, caption, timestamp and
//     the hashtag/mention tokens, and returns to the profile in between
//
// Posts are returned in discovery order with contiguous 1-based ordinals;
// a post whose extraction failed is skipped and does not consume an ordinal.
// An empty result is a valid outcome.
package discovery
