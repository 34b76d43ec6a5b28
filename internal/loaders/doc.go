// Package loaders classifies configured document sources and fetches
// their raw content. A source string is a local path or glob, a URL, a
// URL with a trailing "**" marking a site crawl, or a scheme-qualified
// path handled by the built-in github loader or a user-configured
// loader command.
//
// Loaders are dispatched through the Registry, which implements the
// SourceLoader port.
package loaders
