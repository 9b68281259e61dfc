/*
Package convert turns provider responses into renderable content.

# Overview

Conversion is an ordered strategy chain. Each strategy inspects the
response type and either produces a content fragment or declines; the
first producer wins. A response no strategy accepts is unsupported, and
the caller maps that to its unsupported-URL error path.

# Default policy

  - photo: an img element sourced from the response URL, alt text from
    the response title
  - video, rich: the response's HTML fragment, with every iframe marked
    tabindex="-1" so embedded frames stay out of the host's focus order
  - anything else: unsupported

Definitions can prepend their own strategies ahead of the defaults.
*/
package convert
