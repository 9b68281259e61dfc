// Package frame implements the isolated rendering surface and its
// detach/reattach continuity.
//
// A Frame hosts resolved provider content in its own document with its
// own sandboxed script runtime, so third-party markup cannot touch the
// authoring surface. When a consumer is destroyed while its frame holds
// content, the frame's subtree is captured into the ContentCache; a new
// consumer for the same resource URL restores the capture before any
// network activity.
//
// A capture is only eligible for reuse once its originating frame is
// proven orphaned: the Registry tracks which frames are attached, and
// ContentCache.PopDetached skips entries whose frame is still live.
// "Old" is not enough; content still displayed elsewhere stays where
// it is.
package frame
