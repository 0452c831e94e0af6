// Package harvest provides a relevance-scored content extraction pipeline
// for crawled web pages. It scores outbound links, recognizes data tables,
// splits cleaned text into token-bounded chunks and hands those chunks to a
// pluggable extraction backend.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, gemini/, prometheus/).
package harvest
