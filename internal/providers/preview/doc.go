/*
Package preview synthesizes provider responses from the resource page
itself, for URLs no real provider covers.

# Overview

The strategy fetches the page with browser-like headers, then works down
a ladder:

 1. oEmbed discovery: a link element advertising a JSON endpoint wins;
    the discovered document becomes the response as-is.
 2. OpenGraph metadata, with title and description filled from the
    document when the graph is incomplete.
 3. Plain scraping: title element, first heading, meta description,
    first paragraph.

The result is a rich response carrying a small link card, or a photo
response when the page yields nothing but an image. Scraped text is
sanitized before it enters the response; thumbnails are sniffed and
dropped unless they really are images.

Preview runs as a transport strategy under the "preview" mode, so a
catch-all definition can route leftover URLs here.
*/
package preview
