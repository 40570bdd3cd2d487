// Package biblefetch archives scripture text and narration audio from a
// JavaScript-rendered reading site. It renders the site's chapter menu in a
// headless browser, fetches every chapter page, downloads its audio, and
// writes a per-testament folder hierarchy with a global metadata index.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package biblefetch
